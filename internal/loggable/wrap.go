package loggable

import "context"

// Call runs fn as an intercepted call of m with the given argument values.
func Call[R any](ctx context.Context, i *Interceptor, m *Method, args []any, fn func(context.Context) (R, error)) (R, error) {
	out, err := i.Invoke(ctx, m, args, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	r, _ := out.(R)
	return r, err
}

// Func0 wraps a function without arguments.
func Func0[R any](i *Interceptor, m *Method, fn func(context.Context) (R, error)) func(context.Context) (R, error) {
	m = m.bind(fn)
	return func(ctx context.Context) (R, error) {
		return Call(ctx, i, m, nil, fn)
	}
}

// Func1 wraps a function of one argument.
func Func1[A, R any](i *Interceptor, m *Method, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	m = m.bind(fn)
	return func(ctx context.Context, a A) (R, error) {
		return Call(ctx, i, m, []any{a}, func(ctx context.Context) (R, error) {
			return fn(ctx, a)
		})
	}
}

// Func2 wraps a function of two arguments.
func Func2[A, B, R any](i *Interceptor, m *Method, fn func(context.Context, A, B) (R, error)) func(context.Context, A, B) (R, error) {
	m = m.bind(fn)
	return func(ctx context.Context, a A, b B) (R, error) {
		return Call(ctx, i, m, []any{a, b}, func(ctx context.Context) (R, error) {
			return fn(ctx, a, b)
		})
	}
}

// Func3 wraps a function of three arguments.
func Func3[A, B, C, R any](i *Interceptor, m *Method, fn func(context.Context, A, B, C) (R, error)) func(context.Context, A, B, C) (R, error) {
	m = m.bind(fn)
	return func(ctx context.Context, a A, b B, c C) (R, error) {
		return Call(ctx, i, m, []any{a, b, c}, func(ctx context.Context) (R, error) {
			return fn(ctx, a, b, c)
		})
	}
}

// Proc1 wraps a function of one argument that only returns an error.
func Proc1[A any](i *Interceptor, m *Method, fn func(context.Context, A) error) func(context.Context, A) error {
	m = m.bind(fn)
	return func(ctx context.Context, a A) error {
		_, err := i.Invoke(ctx, m, []any{a}, func(ctx context.Context) (any, error) {
			return nil, fn(ctx, a)
		})
		return err
	}
}

// Proc2 wraps a function of two arguments that only returns an error.
func Proc2[A, B any](i *Interceptor, m *Method, fn func(context.Context, A, B) error) func(context.Context, A, B) error {
	m = m.bind(fn)
	return func(ctx context.Context, a A, b B) error {
		_, err := i.Invoke(ctx, m, []any{a, b}, func(ctx context.Context) (any, error) {
			return nil, fn(ctx, a, b)
		})
		return err
	}
}
