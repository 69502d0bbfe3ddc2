package sqlinline

const QInsertSceneVersion = `--sql 706a7a93-bd3a-42c3-abf1-d5f4180afa3d
insert into scene_versions (id, scene_id, version_no, image_path, prompt)
values ($1, $2, $3, $4, $5);
`

const QNextSceneVersionNo = `--sql aa6f319d-a9eb-45bf-8bbb-bf86ded054b6
select coalesce(max(version_no), 0) + 1
from scene_versions
where scene_id = $1;
`

const QSelectSceneVersions = `--sql 0c5e2954-19a9-4336-9d22-8c1c097c2d64
select id, scene_id, version_no, image_path, prompt, created_at
from scene_versions
where scene_id = $1
order by version_no asc;
`

const QSelectSceneVersionByNo = `--sql 6a9c31d4-8be2-4f05-9f3c-2d7a41c08b5e
select id, scene_id, version_no, image_path, prompt, created_at
from scene_versions
where scene_id = $1 and version_no = $2;
`

const QDeleteSceneVersion = `--sql 4d2f80ab-66c1-4e3a-b0d9-8e5f13a6c247
delete from scene_versions
where id = $1;
`
