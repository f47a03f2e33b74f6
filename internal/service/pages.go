package service

import (
	"context"
)

// defaultPageSize applies when callers pass a non-positive page size
const defaultPageSize = 50

// fetchAll walks a paged listing; fetch returns one page starting at offset
// plus the server-reported total, negative when unknown. It stops once a known
// total is reached or the server returns a short or empty page.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, offset, limit int) ([]T, int, error),
	pageSize int,
	onProgress func(loaded, total int),
) ([]T, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []T
	for total := -1; total < 0 || len(all) < total; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, reported, err := fetch(ctx, len(all), pageSize)
		if err != nil {
			return nil, err
		}
		if all == nil && reported > 0 {
			all = make([]T, 0, reported)
		}
		all = append(all, page...)
		total = reported

		if onProgress != nil {
			onProgress(len(all), total)
		}
		if len(page) < pageSize {
			break
		}
	}
	return all, nil
}
