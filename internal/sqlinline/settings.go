package sqlinline

const QSelectUserSettings = `--sql d26c761b-c1d7-4a4f-b480-23a058c68d32
select id, user_id, theme, high_contrast_mode, large_text, email_notifications,
       marketing_emails, save_history, share_usage_data, updated_at
from user_settings
where user_id = $1;
`

// QUpsertUserSettings treats NULL parameters as "keep current value" on update
// and "use default" on insert.
const QUpsertUserSettings = `--sql aaf39029-c79d-4726-a223-304660afcaea
insert into user_settings (user_id, theme, high_contrast_mode, large_text, email_notifications,
                           marketing_emails, save_history, share_usage_data, updated_at)
values ($1,
        coalesce($2::text, 'light'),
        coalesce($3::boolean, false),
        coalesce($4::boolean, false),
        coalesce($5::boolean, true),
        coalesce($6::boolean, false),
        coalesce($7::boolean, true),
        coalesce($8::boolean, true),
        now())
on conflict (user_id) do update set
    theme = coalesce($2::text, user_settings.theme),
    high_contrast_mode = coalesce($3::boolean, user_settings.high_contrast_mode),
    large_text = coalesce($4::boolean, user_settings.large_text),
    email_notifications = coalesce($5::boolean, user_settings.email_notifications),
    marketing_emails = coalesce($6::boolean, user_settings.marketing_emails),
    save_history = coalesce($7::boolean, user_settings.save_history),
    share_usage_data = coalesce($8::boolean, user_settings.share_usage_data),
    updated_at = now()
returning id, user_id, theme, high_contrast_mode, large_text, email_notifications,
          marketing_emails, save_history, share_usage_data, updated_at;
`
