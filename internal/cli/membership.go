package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/forumx/forumx/internal/payment"
	"github.com/forumx/forumx/internal/validation"
)

func newMembershipCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "membership",
		Short: "View and upgrade your membership",
	}

	cmd.AddCommand(
		newMembershipStatusCmd(app),
		newMembershipJoinCmd(app),
	)

	return cmd
}

func newMembershipStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your membership status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/membership"); err != nil {
				return err
			}

			record, err := app.Users.Get(cmd.Context(), app.Session.Identity().Email)
			if err != nil {
				return err
			}

			if record.Membership {
				fmt.Fprintf(app.Out, "Gold member (badge: %s)\n", record.Badge)
			} else {
				fmt.Fprintf(app.Out, "Free account (badge: %s). Upgrade with 'forumx membership join' for $%d.\n",
					record.Badge, payment.MembershipAmountUSD)
			}
			return nil
		},
	}
}

func newMembershipJoinCmd(app *App) *cobra.Command {
	var card payment.Card

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Purchase the gold membership",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.EnsureAuthenticated("/membership"); err != nil {
				return err
			}

			id := app.Session.Identity()
			record, err := app.Users.Get(ctx, id.Email)
			if err != nil {
				return err
			}
			if record.Membership {
				fmt.Fprintln(app.Out, "You are already a gold member.")
				return nil
			}

			if card.Number == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Card number").Value(&card.Number),
					huh.NewInput().Title("Expiry month (MM)").Value(&card.ExpMonth),
					huh.NewInput().Title("Expiry year (YYYY)").Value(&card.ExpYear),
					huh.NewInput().Title("CVC").EchoMode(huh.EchoModePassword).Value(&card.CVC),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			if errs := validation.ValidateCardRequest(validation.CardRequest{
				Number:   card.Number,
				ExpMonth: card.ExpMonth,
				ExpYear:  card.ExpYear,
				CVC:      card.CVC,
			}); len(errs) > 0 {
				return fieldErrors(errs)
			}

			receipt, err := app.Payments.Purchase(ctx, payment.Buyer{
				UserID:      id.UID,
				Email:       id.Email,
				DisplayName: id.DisplayName,
			}, card)
			if err != nil {
				// Payment errors surface inline; nothing is retried.
				return fmt.Errorf("payment failed: %w", err)
			}

			fmt.Fprintf(app.Out, "Membership activated! Transaction: %s\n", receipt.TransactionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&card.Number, "card-number", "", "card number")
	cmd.Flags().StringVar(&card.ExpMonth, "exp-month", "", "card expiry month (MM)")
	cmd.Flags().StringVar(&card.ExpYear, "exp-year", "", "card expiry year (YYYY)")
	cmd.Flags().StringVar(&card.CVC, "cvc", "", "card verification code")

	return cmd
}
