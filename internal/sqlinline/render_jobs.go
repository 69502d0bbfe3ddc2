package sqlinline

const QInsertRenderJob = `--sql 7b63d8f3-e1bb-4e02-abaf-8c82406151cb
insert into render_jobs (id, scene_id, type, status)
values ($1, $2, $3, $4);
`

const QSelectRenderJobByID = `--sql ce41507c-96c3-4913-a9a4-a7f3a754a0f6
select id, scene_id, type, status, error_message, cost_estimate_cents, created_at, updated_at
from render_jobs
where id = $1;
`

// QClaimRenderJob moves the oldest claimable pending job to processing.
// Per-scene serialization does not need a visibility check here: the
// render_jobs_scene_active_uidx partial unique index guarantees a scene
// holds at most one pending or processing job, so a pending job implies no
// sibling run is in flight.
const QClaimRenderJob = `--sql 1c05c5bf-fd3f-4bc2-95bb-3927f38c4663
with next_job as (
    select id
    from render_jobs
    where status = 'pending'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update render_jobs
    set status = 'processing', updated_at = now()
    where id in (select id from next_job)
    returning id, scene_id, type, status, error_message, cost_estimate_cents, created_at, updated_at
)
select * from claimed;
`

const QCompleteRenderJob = `--sql 8918d0c5-5bb5-4da2-b48b-b71541a005f5
update render_jobs
set status = 'completed', cost_estimate_cents = $2, updated_at = now()
where id = $1;
`

const QFailRenderJob = `--sql 31424940-ebd0-48d5-8dac-15fb4dbf286a
update render_jobs
set status = 'failed', error_message = $2, updated_at = now()
where id = $1;
`

const QSweepProcessingJobs = `--sql f2e7dde4-da98-4a61-94ef-24f225a9ef8d
update render_jobs
set status = 'failed', error_message = $1, updated_at = now()
where status = 'processing';
`
