package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"Apiverse/internal/core/engagement"
	"Apiverse/internal/core/upvotes"
)

// Exit codes for toggle failures
const (
	ExitFailure        = 1
	ExitSignInRequired = 2
)

func printViews(w io.Writer, views []engagement.ListingView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No listings.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TIER\tID\tNAME\tUPVOTES\t"); err != nil {
		return err
	}
	for _, v := range views {
		tier := string(v.Tier)
		if tier == "" {
			tier = "-"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			tier, v.Listing.ID, v.Listing.Name, v.Listing.UpvoteCount, marks(v)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatToggle(res *engagement.ToggleResult) string {
	verb := "Liked"
	if res.Direction == upvotes.DirectionUnlike {
		verb = "Unliked"
	}
	return fmt.Sprintf("%s %s (%d upvotes)", verb, res.ListingID, res.UpvoteCount)
}

func marks(v engagement.ListingView) string {
	var m []string
	if v.Liked {
		m = append(m, "liked")
	}
	if v.Saved {
		m = append(m, "saved")
	}
	if v.Pending {
		m = append(m, "pending")
	}
	return strings.Join(m, ",")
}

// explain turns a toggle error into the message shown to the user and the
// exit code a one-shot command should return. A gone listing is a notice,
// not a failure.
func explain(err error) (string, int) {
	var (
		signIn *engagement.SignInRequiredError
		gone   *engagement.ListingGoneError
	)
	switch {
	case errors.As(err, &signIn):
		if signIn.SignInURL == "" {
			return "Sign in to like listings.", ExitSignInRequired
		}
		return "Sign in to like listings: " + signIn.SignInURL, ExitSignInRequired
	case errors.As(err, &gone):
		return fmt.Sprintf("Listing %s is no longer available; it will disappear on the next refresh.", gone.ListingID), 0
	case errors.Is(err, engagement.ErrTogglePending):
		return "A like for this listing is still being sent.", ExitFailure
	case engagement.IsRetryable(err):
		return "Could not reach the listing service. Try again.", ExitFailure
	default:
		return err.Error(), ExitFailure
	}
}
