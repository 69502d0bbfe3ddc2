package sqlinline

const QInsertVerificationLog = `--sql 9b1d64ef-2a73-4c18-8f02-cf5a9e347d61
insert into verification_logs (id, scene_id, check_type, score, issues)
values ($1, $2, $3, $4, $5::jsonb);
`

const QSelectVerificationLogs = `--sql e3c57a20-94fd-4b6a-a1c8-07d2f681b935
select id, scene_id, check_type, score, issues, created_at
from verification_logs
where scene_id = $1
order by created_at asc;
`
