package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/home"
)

// Catalog is the read side of the storefront API used by the CLI.
type Catalog interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Products(ctx context.Context) ([]domain.Product, error)
	SearchAndFilter(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	ProductsByPrice(ctx context.Context, price float64) ([]domain.Product, error)
	SlideImages(ctx context.Context) ([]domain.SlideImage, error)
}

// Session drives the home state the way the storefront page does: every
// fetch is bracketed by loading actions and its result is dispatched.
type Session struct {
	catalog Catalog
	store   *home.Store
	out     io.Writer
}

func NewSession(catalog Catalog, out io.Writer) *Session {
	return &Session{catalog: catalog, store: home.NewStore(), out: out}
}

func (s *Session) State() home.State {
	return s.store.State()
}

func (s *Session) toggle(dropdown home.ActionType) {
	s.store.Dispatch(home.OpenDropdown(dropdown, true))
}

func (s *Session) loadProducts(ctx context.Context, fetch func(context.Context) ([]domain.Product, error)) error {
	s.store.Dispatch(home.Action{Type: home.Loading, Open: true})
	defer s.store.Dispatch(home.Action{Type: home.Loading, Open: false})

	products, err := fetch(ctx)
	if err != nil {
		return err
	}
	s.store.Dispatch(home.Action{Type: home.SetProducts, Products: products})
	return nil
}

func (s *Session) Categories(ctx context.Context) error {
	s.toggle(home.CategoryListDropdown)

	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		_, err := fmt.Fprintln(s.out, "No category found")
		return err
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tIMAGE")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t/uploads/categories/%s\n", c.ID.Hex(), c.Name, c.Status, c.Image)
	}
	return tw.Flush()
}

func (s *Session) AllProducts(ctx context.Context) error {
	if err := s.loadProducts(ctx, s.catalog.Products); err != nil {
		return err
	}
	return s.renderProducts()
}

// Search filters the full product list by name on the client side.
func (s *Session) Search(ctx context.Context, term string) error {
	s.toggle(home.SearchDropdown)

	s.store.Dispatch(home.Action{Type: home.Loading, Open: true})
	all, err := s.catalog.Products(ctx)
	s.store.Dispatch(home.Action{Type: home.Loading, Open: false})
	if err != nil {
		return err
	}

	s.store.Dispatch(home.Action{Type: home.SearchHandleInReducer, Search: term, ProductArray: all})
	return s.renderProducts()
}

func (s *Session) Filter(ctx context.Context, f domain.ProductFilter) error {
	s.toggle(home.SearchFilterDropdown)
	if err := s.loadProducts(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return s.catalog.SearchAndFilter(ctx, f)
	}); err != nil {
		return err
	}
	return s.renderProducts()
}

func (s *Session) ByCategory(ctx context.Context, categoryID string) error {
	s.toggle(home.CategoryListDropdown)
	if err := s.loadProducts(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return s.catalog.ProductsByCategory(ctx, categoryID)
	}); err != nil {
		return err
	}
	return s.renderProducts()
}

// ByPrice lists products below price; a nil price restores the full list.
func (s *Session) ByPrice(ctx context.Context, price *float64) error {
	s.toggle(home.FilterListDropdown)
	fetch := s.catalog.Products
	if price != nil {
		bound := *price
		fetch = func(ctx context.Context) ([]domain.Product, error) {
			return s.catalog.ProductsByPrice(ctx, bound)
		}
	}
	if err := s.loadProducts(ctx, fetch); err != nil {
		return err
	}
	return s.renderProducts()
}

func (s *Session) Slides(ctx context.Context) error {
	slides, err := s.catalog.SlideImages(ctx)
	if err != nil {
		return err
	}
	s.store.Dispatch(home.Action{Type: home.SliderImages, Slides: slides})

	for _, img := range s.store.State().SliderImages {
		fmt.Fprintf(s.out, "/uploads/customize/%s\n", img.Image)
	}
	return nil
}

func (s *Session) renderProducts() error {
	state := s.store.State()
	if len(state.Products) == 0 {
		_, err := fmt.Fprintln(s.out, "No product found")
		return err
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORY\tSTOCK")
	for _, p := range state.Products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%d\n", p.ID.Hex(), strings.TrimSpace(p.Name), p.Price, category, p.Quantity)
	}
	return tw.Flush()
}
