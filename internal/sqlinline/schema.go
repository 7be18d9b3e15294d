package sqlinline

const QCreateUsersTable = `--sql dd9edae5-a7f5-4922-bfd6-9d265a2194c6
create table if not exists users (
    id bigserial primary key,
    username text not null unique,
    email text not null unique,
    password text not null,
    profile_image text not null default 'https://via.placeholder.com/150',
    plan_type text not null default 'free',
    stripe_customer_id text,
    stripe_subscription_id text,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`

const QCreateUserSettingsTable = `--sql 5cdaa86f-1d15-4487-b421-ebe710eecb10
create table if not exists user_settings (
    id bigserial primary key,
    user_id bigint not null unique references users(id) on delete cascade,
    theme text not null default 'light',
    high_contrast_mode boolean not null default false,
    large_text boolean not null default false,
    email_notifications boolean not null default true,
    marketing_emails boolean not null default false,
    save_history boolean not null default true,
    share_usage_data boolean not null default true,
    updated_at timestamptz not null default now()
);
`

const QCreateImagesTable = `--sql 11916294-1d33-4460-a498-2b72b0696329
create table if not exists images (
    id bigserial primary key,
    user_id bigint references users(id) on delete cascade,
    original_url text not null,
    processed_url text,
    thumbnail_url text,
    style text,
    ai_prompt text,
    processing_type text not null,
    metadata jsonb,
    created_at timestamptz not null default now()
);
`

const QCreateImagesUserIndex = `--sql c4aac374-3a6a-418b-869f-7e24359df30f
create index if not exists images_user_created_idx on images (user_id, created_at desc);
`

// SchemaStatements lists the bootstrap DDL in dependency order.
var SchemaStatements = []string{
	QCreateUsersTable,
	QCreateUserSettingsTable,
	QCreateImagesTable,
	QCreateImagesUserIndex,
}
