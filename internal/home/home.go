// Package home holds the storefront home-view state and the reducer that
// evolves it.
package home

import (
	"strings"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

type ActionType string

const (
	CategoryListDropdown  ActionType = "categoryListDropdown"
	FilterListDropdown    ActionType = "filterListDropdown"
	SearchDropdown        ActionType = "searchDropdown"
	SearchFilterDropdown  ActionType = "searchFilterDropdown"
	SetProducts           ActionType = "setProducts"
	SearchHandleInReducer ActionType = "searchHandleInReducer"
	Loading               ActionType = "loading"
	SliderImages          ActionType = "sliderImages"
)

type State struct {
	CategoryListDropdown bool
	FilterListDropdown   bool
	SearchDropdown       bool
	SearchFilterDropdown bool
	Products             []domain.Product
	Loading              bool
	SliderImages         []domain.SlideImage
}

// Action carries one of the payload fields depending on Type: Open for the
// dropdowns and Loading, Products for SetProducts, Search plus ProductArray
// for SearchHandleInReducer, Slides for SliderImages.
type Action struct {
	Type         ActionType
	Open         bool
	Products     []domain.Product
	Search       string
	ProductArray []domain.Product
	Slides       []domain.SlideImage
}

func InitialState() State {
	return State{}
}

// OpenDropdown builds the action for a dropdown toggle.
func OpenDropdown(t ActionType, open bool) Action {
	return Action{Type: t, Open: open}
}

// Reduce returns the state after applying a. At most one dropdown is open
// after any dropdown action; unknown actions leave s unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case CategoryListDropdown, FilterListDropdown, SearchDropdown, SearchFilterDropdown:
		s.CategoryListDropdown = false
		s.FilterListDropdown = false
		s.SearchDropdown = false
		s.SearchFilterDropdown = false
		switch a.Type {
		case CategoryListDropdown:
			s.CategoryListDropdown = a.Open
		case FilterListDropdown:
			s.FilterListDropdown = a.Open
		case SearchDropdown:
			s.SearchDropdown = a.Open
		case SearchFilterDropdown:
			s.SearchFilterDropdown = a.Open
		}
	case SetProducts:
		s.Products = a.Products
	case SearchHandleInReducer:
		s.Products = searchByName(a.ProductArray, a.Search)
	case Loading:
		s.Loading = a.Open
	case SliderImages:
		s.SliderImages = a.Slides
	}
	return s
}

// searchByName keeps products whose name contains term, ignoring case.
// A nil list stays nil.
func searchByName(products []domain.Product, term string) []domain.Product {
	if products == nil {
		return nil
	}
	term = strings.ToLower(term)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// Store serialises dispatches against a single State.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: InitialState()}
}

func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OpenDropdowns counts the dropdown flags that are set.
func (s State) OpenDropdowns() int {
	n := 0
	for _, open := range []bool{s.CategoryListDropdown, s.FilterListDropdown, s.SearchDropdown, s.SearchFilterDropdown} {
		if open {
			n++
		}
	}
	return n
}
