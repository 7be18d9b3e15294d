package sqlinline

const QInsertImage = `--sql e0a599e3-ce8e-4b66-93c6-53bee335d2b3
insert into images (user_id, original_url, processed_url, thumbnail_url, style, ai_prompt,
                    processing_type, metadata, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, clock_timestamp())
returning id, user_id, original_url, processed_url, thumbnail_url, style, ai_prompt,
          processing_type, metadata, created_at;
`

const QSelectImageByID = `--sql 9a569eb9-d020-46cb-9708-4da4e434342b
select id, user_id, original_url, processed_url, thumbnail_url, style, ai_prompt,
       processing_type, metadata, created_at
from images
where id = $1;
`

const QSelectImagesByUser = `--sql aee42b16-8539-46a1-b5e7-d256fa401146
select id, user_id, original_url, processed_url, thumbnail_url, style, ai_prompt,
       processing_type, metadata, created_at
from images
where user_id = $1
order by created_at desc, id desc;
`

const QDeleteImagesByUser = `--sql 83a9da4a-550b-4ca8-8f1b-b90f18f66dae
delete from images
where user_id = $1;
`
