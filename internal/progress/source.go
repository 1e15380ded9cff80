package progress

import "context"

// Sample is a progress reading. Known is false when the source has nothing
// to report yet.
type Sample struct {
	Downloaded int64
	Known      bool
}

// Source reports how many bytes have been downloaded so far.
type Source interface {
	Sample(ctx context.Context) (Sample, error)
}

// TotalSource is implemented by sources that can also tell the final size.
// ok is false while the size is not known yet.
type TotalSource interface {
	Total(ctx context.Context) (total int64, ok bool, err error)
}

// FuncSource adapts a function to Source.
type FuncSource func(ctx context.Context) (Sample, error)

func (f FuncSource) Sample(ctx context.Context) (Sample, error) {
	return f(ctx)
}
