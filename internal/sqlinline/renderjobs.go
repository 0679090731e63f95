package sqlinline

// QClaimRenderJob atomically claims the oldest queued render job. The skip
// locked clause keeps concurrent claimants from blocking on each other, and
// the joins hydrate everything the worker needs downstream in the same pass
// so no later re-read of a possibly-changed row is necessary.
const QClaimRenderJob = `--sql 968a531f-b03c-4187-9241-6f0d3e75940e
with next_job as (
    select id
    from render_jobs
    where status = 'queued'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update render_jobs
    set status = 'running', started_at = now()
    where id in (select id from next_job)
    returning id, tenant_id, quote_id, quote_version_id, attempt, prompt, created_at, started_at
)
select c.id, c.tenant_id, c.quote_id, c.quote_version_id, c.attempt, c.prompt, c.created_at, c.started_at,
       t.render_enabled, t.business_name, t.trade, t.prompt_addendum, t.negative_guidance, t.currency_code,
       coalesce(v.version, 0) as version_number,
       q.notes, q.photo_urls
from claimed c
join tenants t on t.id = c.tenant_id
join quotes q on q.id = c.quote_id
left join quote_versions v on v.id = c.quote_version_id;
`

const QEnqueueRenderJob = `--sql c79cbef7-d778-4abb-9c14-4f66498522a5
insert into render_jobs (id, tenant_id, quote_id, quote_version_id, attempt, status, prompt)
values (
    $1, $2, $3, $4,
    coalesce((select max(attempt) from render_jobs where quote_id = $3), 0) + 1,
    'queued', $5
)
returning attempt, created_at;
`

// Terminal writes are guarded on status = 'running': a rendered or failed row
// is never rewritten, so a duplicate completion is a no-op.
const QMarkRenderJobRendered = `--sql 23577590-940a-4f05-8878-a819b4221f0a
update render_jobs
set status = 'rendered', image_url = $2, error_message = null, completed_at = now()
where id = $1 and status = 'running';
`

const QMarkRenderJobFailed = `--sql 128b7ccf-b32b-463a-b084-4d93d99a55e6
update render_jobs
set status = 'failed', error_message = $2, completed_at = now()
where id = $1 and status = 'running';
`

const QLatestRenderJobByQuote = `--sql 6f86b697-9eb6-4c65-9c8e-be2a3019dc56
select id, tenant_id, quote_id, quote_version_id, attempt, status, prompt,
       image_url, error_message, created_at, started_at, completed_at
from render_jobs
where tenant_id = $1 and quote_id = $2
order by created_at desc
limit 1;
`
