package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/greencart/api/validators"
	"github.com/angelmondragon/greencart/internal/app"
	"github.com/angelmondragon/greencart/internal/cart"
)

// oneShot opens the engine, lets the initial fetch settle, runs op and waits
// for anything it propagated before printing the final state.
func oneShot(cmd *cobra.Command, opts *RootOptions, op func(ctx context.Context, a *app.App) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := opts.build(ctx, "")
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.Close()) }()

	a.Engine.Open(ctx)
	a.Engine.WaitIdle()

	if op != nil {
		if err := op(ctx, a); err != nil {
			return err
		}
		a.Engine.WaitIdle()
	}
	return opts.printer(cmd).state(a.Engine.State())
}

func productIDArg(raw string) (string, error) {
	id, err := validators.ProductID(raw)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "invalid product id", err)
	}
	return id, nil
}

func NewStateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the cart after syncing with the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return oneShot(cmd, opts, nil)
		},
	}
}

type addOptions struct {
	quantity int
	product  cart.ProductSnapshot
}

func NewAddCommand(opts *RootOptions) *cobra.Command {
	add := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := productIDArg(args[0])
			if err != nil {
				return err
			}
			if add.quantity > cart.MaxQuantity {
				return NewExitError(ExitCommandError, fmt.Sprintf("quantity cannot exceed %d", cart.MaxQuantity))
			}
			if !add.product.Valid() {
				return NewExitError(ExitCommandError, "price and footprint must be finite and not negative")
			}
			return oneShot(cmd, opts, func(_ context.Context, a *app.App) error {
				a.Engine.AddItem(id, add.quantity, add.product)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&add.quantity, "qty", "q", 1, "quantity to add (values below 1 add one)")
	cmd.Flags().StringVar(&add.product.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&add.product.Price, "price", 0, "unit price")
	cmd.Flags().Float64Var(&add.product.CarbonFootprint, "footprint", 0, "unit carbon footprint in kg CO2")
	cmd.Flags().IntVar(&add.product.SustainabilityScore, "score", 0, "sustainability score (0-100)")
	cmd.Flags().StringVar(&add.product.Image, "image", "", "product image URL")

	return cmd
}

func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := productIDArg(args[0])
			if err != nil {
				return err
			}
			return oneShot(cmd, opts, func(_ context.Context, a *app.App) error {
				a.Engine.RemoveItem(id)
				return nil
			})
		},
	}
}

func NewSetQuantityCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-qty <product-id> <quantity>",
		Short: "Set the quantity of a line (local only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := productIDArg(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil || qty < 1 || qty > cart.MaxQuantity {
				return NewExitError(ExitCommandError, fmt.Sprintf("quantity must be a whole number from 1 to %d, got %q", cart.MaxQuantity, args[1]))
			}
			return oneShot(cmd, opts, func(_ context.Context, a *app.App) error {
				a.Engine.SetQuantity(id, qty)
				return nil
			})
		},
	}
}

func NewToggleGreenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-green",
		Short: "Flip the green delivery option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return oneShot(cmd, opts, func(_ context.Context, a *app.App) error {
				a.Engine.ToggleGreenDelivery()
				return nil
			})
		},
	}
}

func NewToggleOffsetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-offset",
		Short: "Flip the carbon offset option",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return oneShot(cmd, opts, func(_ context.Context, a *app.App) error {
				a.Engine.ToggleCarbonOffset()
				return nil
			})
		},
	}
}

// NewSyncCommand fetches the remote cart and fails when it could not be
// loaded. The saved cart is still printed in that case.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace the local cart with the service's copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := opts.build(ctx, "")
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			a.Engine.Hydrate(ctx)
			state, fetchErr := a.Engine.FetchCart(ctx, true)
			p := opts.printer(cmd)
			if fetchErr != nil {
				if err := p.state(state); err != nil {
					return err
				}
				return WrapExitError(ExitFailure, "sync failed", fetchErr)
			}
			return p.state(state)
		},
	}
}

func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := opts.build(ctx, "")
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close()) }()

			a.Engine.Open(ctx)
			a.Engine.WaitIdle()

			p := opts.printer(cmd)
			order, err := a.Engine.Checkout(ctx)
			if err != nil {
				if perr := p.failure(err); perr != nil {
					return perr
				}
				return WrapExitError(ExitFailure, "checkout failed", err)
			}
			return p.order(order)
		},
	}
}
