package sqlinline

// QResolveTenant accepts either a tenant's human-readable slug or its
// internal id and resolves to the same row either way.
const QResolveTenant = `--sql a7f545c3-48e5-4039-b0d4-d449d0d00be6
select id
from tenants
where slug = $1 or id::text = $1
limit 1;
`

const QTenantPricingSettings = `--sql f57497b6-d8d8-4357-92b3-5f0ac40f370d
select coalesce(pricing_policy, '{}'::jsonb),
       coalesce(pricing_config, '{}'::jsonb),
       coalesce(pricing_rules, '{}'::jsonb),
       coalesce(currency_code, 'USD')
from tenants
where id = $1;
`
