package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/client"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultAPIURL  = "http://localhost:8000"
	defaultTimeout = 10 * time.Second
)

// CatalogFactory builds the API client once flags and environment are resolved.
type CatalogFactory func(apiURL string, timeout time.Duration) Catalog

// HTTPCatalog is the production factory.
func HTTPCatalog(apiURL string, timeout time.Duration) Catalog {
	return client.New(apiURL, client.Options{Timeout: timeout})
}

// NewRootCmd wires every subcommand. --api-url and --timeout may also be set
// through STOREFRONT_API_URL and STOREFRONT_TIMEOUT.
func NewRootCmd(newCatalog CatalogFactory, out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("storefront")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var session *Session

	root := &cobra.Command{
		Use:   "storefront-cli",
		Short: "Browse the storefront catalog from a terminal",
		Long: `storefront-cli talks to the storefront REST API and mirrors the home page:
listing categories, searching products by name, filtering by category and
price, and showing the slider images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			apiURL := v.GetString("api-url")
			if apiURL == "" {
				return fmt.Errorf("api url must not be empty")
			}
			session = NewSession(newCatalog(apiURL, v.GetDuration("timeout")), out)
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().String("api-url", defaultAPIURL, "Base URL of the storefront API")
	root.PersistentFlags().Duration("timeout", defaultTimeout, "Per-request timeout")
	_ = v.BindPFlag("api-url", root.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	root.AddCommand(
		&cobra.Command{
			Use:   "categories",
			Short: "List all categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return session.Categories(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "products",
			Short: "List all products, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return session.AllProducts(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "search <term>",
			Short: "Search products by name (case-insensitive)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return session.Search(cmd.Context(), args[0])
			},
		},
		newFilterCmd(func() *Session { return session }),
		&cobra.Command{
			Use:   "by-category <category-id>",
			Short: "List the products of one category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return session.ByCategory(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "by-price <price|all>",
			Short: "List products cheaper than price, or all products",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if args[0] == "all" {
					return session.ByPrice(cmd.Context(), nil)
				}
				price, err := strconv.ParseFloat(args[0], 64)
				if err != nil || price <= 0 {
					return fmt.Errorf("price must be a positive number or \"all\", got %q", args[0])
				}
				return session.ByPrice(cmd.Context(), &price)
			},
		},
		&cobra.Command{
			Use:   "slides",
			Short: "List the home slider images",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return session.Slides(cmd.Context())
			},
		},
	)

	return root
}

func newFilterCmd(session func() *Session) *cobra.Command {
	var (
		title    string
		category string
		minPrice float64
		maxPrice float64
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter products by title, category and price range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := domain.ProductFilter{Title: title}
			if category != "" {
				id, err := primitive.ObjectIDFromHex(category)
				if err != nil {
					return fmt.Errorf("invalid category id %q", category)
				}
				f.CategoryID = id
			}
			if cmd.Flags().Changed("min") {
				f.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max") {
				f.MaxPrice = &maxPrice
			}
			return session().Filter(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Case-insensitive title substring")
	cmd.Flags().StringVar(&category, "category", "", "Category id")
	cmd.Flags().Float64Var(&minPrice, "min", 0, "Minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max", 0, "Maximum price")
	return cmd
}
