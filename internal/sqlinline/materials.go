package sqlinline

const QSelectMaterialsByIDs = `--sql 895a2187-ae4f-499e-a192-b63c8d1b1063
select id, name, category, status, dimensions, surface, weight, color, format_code
from materials
where id = any($1::uuid[])
order by array_position($1::uuid[], id);
`

const QSelectMaterialImages = `--sql 7e57f7cb-3ff9-48db-a67b-8ccd7c4b4725
select id, material_id, path, perspective, is_primary, position
from material_images
where material_id = any($1::uuid[])
order by material_id, position asc;
`
