package sqlinline

const QInsertUser = `--sql 98384436-099e-42a7-a146-abb5f9654b12
insert into users (username, email, password, profile_image, plan_type, created_at, updated_at)
values ($1, $2, $3, $4, $5, now(), now())
returning id, username, email, password, profile_image, plan_type,
          stripe_customer_id, stripe_subscription_id, created_at, updated_at;
`

const QSelectUserByID = `--sql e084c295-dba2-410b-9649-92b1eaa98780
select id, username, email, password, profile_image, plan_type,
       stripe_customer_id, stripe_subscription_id, created_at, updated_at
from users
where id = $1;
`

const QSelectUserByEmail = `--sql 3f2e1c1a-a99b-43c7-aaf0-c077617bbdcf
select id, username, email, password, profile_image, plan_type,
       stripe_customer_id, stripe_subscription_id, created_at, updated_at
from users
where email = $1;
`

const QSelectUserByUsername = `--sql 8fcddc64-574d-4061-9ed2-1f02bde01aa0
select id, username, email, password, profile_image, plan_type,
       stripe_customer_id, stripe_subscription_id, created_at, updated_at
from users
where username = $1;
`

const QUpdateUserPlan = `--sql b9f90e90-0d53-40bf-bb9e-2e9ebdf9f9cc
update users
set plan_type = $2,
    updated_at = now()
where id = $1
returning id, username, email, password, profile_image, plan_type,
          stripe_customer_id, stripe_subscription_id, created_at, updated_at;
`
