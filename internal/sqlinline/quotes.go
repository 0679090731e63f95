package sqlinline

const QGetQuote = `--sql 240ca6ec-24af-430d-92fe-837cc2dc572e
select id, tenant_id, contact_name, contact_email, notes, photo_urls,
       assessment, read, stage, created_at, updated_at
from quotes
where tenant_id = $1 and id = $2;
`

const QUpdateQuoteAssessment = `--sql 78cf4dc1-a41d-4a9e-969b-9956b83d694a
update quotes
set assessment = $2, updated_at = now()
where id = $1;
`

// QInsertQuoteVersion assigns the next version number and flips the active
// flag in one statement, keeping the per-quote invariants (strictly
// increasing versions, at most one active) inside the database.
const QInsertQuoteVersion = `--sql 3a2cabaf-4956-458b-9f9e-b7e8383b9332
with deactivated as (
    update quote_versions
    set active = false
    where quote_id = $2 and active
)
insert into quote_versions (id, quote_id, version, active, assessment, estimate_low, estimate_high, inspection_required, basis)
values (
    $1, $2,
    coalesce((select max(version) from quote_versions where quote_id = $2), 0) + 1,
    true, $3, $4, $5, $6, $7
)
returning version, created_at;
`

const QActiveQuoteVersion = `--sql 1afb434c-7888-407e-9d38-51ac5c46855e
select id, quote_id, version, active, assessment, estimate_low, estimate_high,
       inspection_required, basis, created_at
from quote_versions
where quote_id = $1 and active
limit 1;
`
