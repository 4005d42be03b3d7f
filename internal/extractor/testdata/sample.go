package sample

import "github.com/stretchr/testify/suite"

// Base holds shared fixtures.
type Base struct {
	ID int
}

func (b *Base) SetupTest() {}

func (b *Base) TestShared() {}

// UserSuite exercises users.
//
//methodorder:name_ascending
type UserSuite struct {
	suite.Suite
	*Base
	Name, Nickname string `json:"name"`
}

func (s *UserSuite) TestUpdate(ctx string, ids ...int) (int, error) { return 0, nil }

func (s UserSuite) TestCreate() bool { return true }

func (s *UserSuite) TestShared() {}

// List is generic.
type List[T any] struct{ items []T }

func (l *List[T]) Len() int { return len(l.items) }

// Handler is an interface.
type Handler interface {
	Handle(ctx string) error
}

// MyFunc is not a method.
func MyFunc(a int) bool { return true }
