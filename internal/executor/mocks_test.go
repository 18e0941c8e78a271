package executor

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/v0xg/stepforge/internal/action"
)

// -- Driver Mock --

type mockDriver struct {
	mock.Mock
}

func (m *mockDriver) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *mockDriver) Find(ctx context.Context, loc action.Locator) (Element, error) {
	args := m.Called(ctx, loc)
	if el := args.Get(0); el != nil {
		return el.(Element), args.Error(1)
	}
	return nil, args.Error(1)
}

// -- Element Mock --

type mockElement struct {
	mock.Mock
}

func (m *mockElement) Click(ctx context.Context) error       { return m.Called(ctx).Error(0) }
func (m *mockElement) DoubleClick(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockElement) RightClick(ctx context.Context) error  { return m.Called(ctx).Error(0) }
func (m *mockElement) Hover(ctx context.Context) error       { return m.Called(ctx).Error(0) }
func (m *mockElement) Clear(ctx context.Context) error       { return m.Called(ctx).Error(0) }

func (m *mockElement) SendKeys(ctx context.Context, keys string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockElement) Text(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockElement) DragTo(ctx context.Context, target Element) error {
	return m.Called(ctx, target).Error(0)
}

func (m *mockElement) Center(ctx context.Context) (Point, error) {
	args := m.Called(ctx)
	return args.Get(0).(Point), args.Error(1)
}

// blockUntilDone makes a Find call behave like a locator that never matches.
func blockUntilDone(args mock.Arguments) {
	<-args.Get(0).(context.Context).Done()
}
