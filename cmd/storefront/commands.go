package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/checkout"
	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/payment"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client for browsing, cart, and checkout",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newProductsCommand(a),
		newCartCommand(a),
		newWishlistCommand(a),
		newCheckoutCommand(a),
		newBuyCommand(a),
		newOrdersCommand(a),
		newSellerCommand(a),
		newReviewCommand(a),
	)
	return root
}

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Login(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			user, _ := a.session.Current()
			fmt.Printf("signed in as %s (%s)\n", user.Name, user.Email)
			return nil
		},
	}
}

func newRegisterCommand(a *app) *cobra.Command {
	var data auth.RegisterData
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data.Email = args[0]
			if err := a.session.Register(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Println("account created, you can now log in")
			return nil
		},
	}
	cmd.Flags().StringVar(&data.Password, "password", "", "account password")
	cmd.Flags().StringVar(&data.ConfirmPassword, "confirm", "", "password confirmation")
	cmd.Flags().StringVar(&data.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&data.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&data.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&data.Address, "address", "", "shipping address")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("confirm")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.session.Logout(cmd.Context())
			fmt.Println("signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			user, ok := a.session.Current()
			if !ok {
				return auth.ErrNotAuthenticated
			}
			fmt.Printf("%s <%s> role=%s verified=%t\n", user.Name, user.Email, user.Role, user.Verified)
			return nil
		},
	}
}

func newProductsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Browse the catalog"}

	var params dto.ListProductsParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			products, err := a.products.List(c.Context(), params)
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Printf("%s  %-30s  $%s  stock=%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
			}
			return nil
		},
	}
	list.Flags().IntVar(&params.Page, "page", 1, "page number")
	list.Flags().IntVar(&params.Limit, "limit", 20, "page size")
	list.Flags().StringVar(&params.Search, "search", "", "search term")
	list.Flags().StringVar(&params.Category, "category", "", "category filter")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			p, err := a.products.GetByID(c.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\nprice: $%s  stock: %d  rating: %s (%d reviews)\n",
				p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Rating.String(), p.ReviewCount)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newCartCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			lines, err := a.cart.Lines(c.Context())
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Printf("%s  %-30s  x%d  $%s\n", line.ID, line.Snapshot.Name, line.Quantity, line.Snapshot.Price.StringFixed(2))
			}
			totals, err := a.cart.Totals(c.Context())
			if err != nil {
				return err
			}
			fmt.Printf("subtotal: $%s  shipping: $%s  tax: $%s  total: $%s\n",
				totals.Subtotal.StringFixed(2), totals.Shipping.StringFixed(2),
				totals.Tax.StringFixed(2), totals.Total.StringFixed(2))
			return nil
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return a.cart.Add(c.Context(), args[0], qty)
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity")

	remove := &cobra.Command{
		Use:   "remove <line-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid line id: %w", err)
			}
			return a.cart.Remove(c.Context(), id)
		},
	}

	set := &cobra.Command{
		Use:   "set <line-id> <qty>",
		Short: "Change a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid line id: %w", err)
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity: %w", err)
			}
			return a.cart.SetQuantity(c.Context(), id, n)
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return a.cart.Clear(c.Context())
		},
	}

	cmd.AddCommand(add, remove, set, clear)
	return cmd
}

func newWishlistCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			lines, err := a.wishlist.Lines(c.Context())
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Printf("%s  %-30s  $%s\n", line.ID, line.Snapshot.Name, line.Snapshot.Price.StringFixed(2))
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return a.wishlist.Add(c.Context(), args[0])
		},
	}

	remove := &cobra.Command{
		Use:   "remove <line-id>",
		Short: "Remove a wishlist line",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid line id: %w", err)
			}
			return a.wishlist.Remove(c.Context(), id)
		},
	}

	move := &cobra.Command{
		Use:   "move <product-id>",
		Short: "Move a wishlisted product into the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return a.wishlist.MoveToCart(c.Context(), a.cart, args[0])
		},
	}

	cmd.AddCommand(add, remove, move)
	return cmd
}

func cardFlags(cmd *cobra.Command, card *payment.Card) {
	cmd.Flags().StringVar(&card.Number, "card", "", "card number")
	cmd.Flags().StringVar(&card.Expiry, "expiry", "", "card expiry MM/YY")
	cmd.Flags().StringVar(&card.CVV, "cvv", "", "card cvv")
	cmd.Flags().StringVar(&card.HolderName, "name", "", "cardholder name")
	_ = cmd.MarkFlagRequired("card")
	_ = cmd.MarkFlagRequired("expiry")
	_ = cmd.MarkFlagRequired("cvv")
}

func printCheckoutResult(result *checkout.Result) {
	for _, r := range result.Succeeded {
		fmt.Printf("order %s created (product %s x%d)\n", r.OrderID, r.ProductID, r.Quantity)
	}
	for _, r := range result.Failed {
		fmt.Printf("FAILED product %s x%d: %v\n", r.ProductID, r.Quantity, r.Err)
	}
	fmt.Println("checkout:", result.State)
}

func newCheckoutCommand(a *app) *cobra.Command {
	var card payment.Card
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart and create orders",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			result, err := a.checkout.SubmitCart(c.Context(), card)
			if err != nil {
				return err
			}
			printCheckoutResult(result)
			if result.State == checkout.StateSucceeded {
				if _, err := a.orders.History(c.Context()); err != nil {
					a.log.Warn("refresh order history", "error", err)
				}
			}
			return nil
		},
	}
	cardFlags(cmd, &card)
	return cmd
}

func newBuyCommand(a *app) *cobra.Command {
	var card payment.Card
	var qty int
	cmd := &cobra.Command{
		Use:   "buy <product-id>",
		Short: "Buy a single product directly, bypassing the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			product, err := a.products.GetByID(c.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := a.checkout.BuyNow(c.Context(), checkout.DirectItem{
				ProductID: product.ID,
				Quantity:  qty,
				Price:     product.Price,
			}, card)
			if err != nil {
				return err
			}
			printCheckoutResult(result)
			return nil
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "quantity")
	cardFlags(cmd, &card)
	return cmd
}

func newOrdersCommand(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show order history",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			list, err := a.orders.History(c.Context())
			if err != nil {
				return err
			}
			if status != "" {
				list = a.orders.ByStatus(model.OrderStatus(status))
			}
			for _, o := range list {
				fmt.Printf("%s  product=%s x%d  $%s  %s  %s\n",
					o.ID, o.ProductID, o.Quantity, o.TotalPrice.StringFixed(2),
					o.Status, o.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")

	cancel := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Ask the backend to cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return a.orders.Update(c.Context(), args[0], dto.UpdateOrderRequest{Status: model.OrderStatusCancelled})
		},
	}
	cmd.AddCommand(cancel)
	return cmd
}

func newSellerCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "seller", Short: "Seller dashboard"}

	products := &cobra.Command{
		Use:   "products",
		Short: "List your listings",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			list, err := a.seller.Products(c.Context())
			if err != nil {
				return err
			}
			for _, p := range list {
				fmt.Printf("%s  %-30s  $%s  stock=%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
			}
			return nil
		},
	}

	sales := &cobra.Command{
		Use:   "orders",
		Short: "List orders on your listings",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			list, err := a.seller.Orders(c.Context())
			if err != nil {
				return err
			}
			for _, o := range list {
				fmt.Printf("%s  product=%s x%d  $%s  %s\n",
					o.ID, o.ProductID, o.Quantity, o.TotalPrice.StringFixed(2), o.Status)
			}
			return nil
		},
	}

	cmd.AddCommand(products, sales)
	return cmd
}

func newReviewCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "review", Short: "Product reviews"}

	add := &cobra.Command{
		Use:   "add <product-id> <rating> <comment...>",
		Short: "Review a product",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			rating, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating: %w", err)
			}
			return a.reviews.Add(c.Context(), args[0], rating, strings.Join(args[2:], " "))
		},
	}

	show := &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show a product's rating and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			rating, count, err := a.reviews.Rating(c.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("rating: %s (%d reviews)\n", rating.String(), count)
			list, err := a.reviews.ForProduct(c.Context(), args[0])
			if err != nil {
				return err
			}
			for _, r := range list {
				fmt.Printf("%s  %s  %s\n", r.UserName, r.Rating.String(), r.Comment)
			}
			return nil
		},
	}

	cmd.AddCommand(add, show)
	return cmd
}
