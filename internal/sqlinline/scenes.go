package sqlinline

const QInsertScene = `--sql da019bf8-352e-48ea-9d53-e040ad7aa3b9
insert into scenes (
    id, project_id, description, template_ref, style_tags, material_ids,
    blueprint_path, motif_paths, extra_ref_paths, aspect_ratio, width, height,
    image_status, verification_attempts, verification_issues
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, '[]'::jsonb);
`

const QSelectSceneByID = `--sql ba5ec1f3-b8a4-4af9-8c52-116a44921495
select id, project_id, description, template_ref, style_tags, material_ids,
       blueprint_path, motif_paths, extra_ref_paths, aspect_ratio, width, height,
       enriched_prompt, last_refinement_prompt, image_path, image_status,
       last_error_message, verification_score, verification_issues,
       verification_attempts, review_rating, review_notes, created_at, updated_at
from scenes
where id = $1;
`

const QMarkSceneGenerating = `--sql d2dede07-affa-4bfa-b165-6eb912bd7778
update scenes
set image_status = 'generating', last_error_message = '', updated_at = now()
where id = $1 and image_status <> 'generating'
returning id;
`

const QSetSceneStatus = `--sql 24dc2d71-283c-45a2-a9d6-82918a9b9733
update scenes
set image_status = $2, last_error_message = $3, updated_at = now()
where id = $1;
`

const QUpdateSceneImage = `--sql 3687f6b2-7605-4a9e-b768-1b71aed3b12e
update scenes
set image_path = $2, enriched_prompt = $3, updated_at = now()
where id = $1;
`

const QUpdateSceneVerification = `--sql 9d020bca-00ba-45f3-a14a-07aa5ca7fe17
update scenes
set verification_score = $2, verification_issues = $3::jsonb, updated_at = now()
where id = $1;
`

const QSetSceneRefinement = `--sql fb8052f8-01a2-4e58-9fab-3682ce486e8a
update scenes
set last_refinement_prompt = $2, verification_attempts = $3, updated_at = now()
where id = $1;
`

const QUpdateSceneReview = `--sql 5b804c17-9e2d-4f6a-8c31-d4e7a90f52b8
update scenes
set review_rating = $2, review_notes = $3, updated_at = now()
where id = $1;
`

const QDeleteScene = `--sql ff71d86f-1f40-460e-9251-70c2ed3f5622
delete from scenes
where id = $1;
`

// QSweepGeneratingScenes fails scenes stranded in generating with no job
// left to finish them. A generating scene whose pending job survived the
// restart is healthy and is left for the worker to pick up.
const QSweepGeneratingScenes = `--sql 3ceb7810-9474-46de-8ba8-cd9426226b7b
update scenes
set image_status = 'failed', last_error_message = $1, updated_at = now()
where image_status = 'generating'
  and id not in (
      select scene_id from render_jobs
      where status in ('pending', 'processing')
  );
`
