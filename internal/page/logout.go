package page

import (
	"context"

	"solveit/internal/logger"
)

// Logout asks the server to end the session and always lands on the login page,
// whatever the request outcome.
func Logout(ctx context.Context, client LogoutClient, nav Navigator, log *logger.Logger) {
	if err := client.Logout(ctx); err != nil && log != nil {
		log.Component(nil).WithError(err).Warn("logout request failed, redirecting anyway")
	}
	nav.Navigate(LoginPath)
}
