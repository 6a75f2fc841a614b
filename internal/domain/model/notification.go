package model

// NotificationType tags how a notification is delivered. It is stored as a
// small integer in notification_type; values are assigned by clients.
type NotificationType int16

// Notification is one row of the email_notifications table. ID is zero until
// the row has been persisted and is never changed afterwards.
type Notification struct {
	ID          int64
	Title       string           `validate:"required,max=255"`
	Type        NotificationType `validate:"gte=0"`
	Template    string
	Email       string `validate:"required,email"`
	Password    string
	SMTPServer  string `validate:"required"`
	SMTPPort    int    `validate:"min=1,max=65535"`
	Description string
}

// IsPersisted reports whether the store has assigned an identifier.
func (n Notification) IsPersisted() bool {
	return n.ID > 0
}
