package mailer

import (
	"github.com/prastiyo12/userhub_api/internal/users"
)

// Queue is the subset of Dispatcher used by UserNotifier.
type Queue interface {
	Enqueue(msg Message) bool
}

// UserNotifier turns user lifecycle events into queued mails: a welcome
// mail to the new user and, when AdminEmail is configured, a notification
// to the admin address.
type UserNotifier struct {
	Queue      Queue
	AdminEmail string
}

func (n *UserNotifier) UserCreated(u *users.User) {
	if n.Queue == nil || u == nil {
		return
	}

	n.Queue.Enqueue(WelcomeMessage(u.Email, u.Name))

	if n.AdminEmail != "" {
		n.Queue.Enqueue(AdminNewUserMessage(n.AdminEmail, u.Email, u.Name))
	}
}
