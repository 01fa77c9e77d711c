package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/pkg/httputil"
)

// writeInvalidParam answers a malformed query parameter with 400.
func writeInvalidParam(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}

// pageParam reads "page", defaulting to 1. Non-numeric or non-positive
// values are rejected.
func pageParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("page must be a valid positive integer")
	}
	return page, nil
}

// optionalInt reads an integer parameter, returning nil when it is absent.
func optionalInt(r *http.Request, name string) (*int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid integer", name)
	}
	return &n, nil
}

// priceRange resolves either a "price" bucket or explicit min_price and
// max_price bounds. Mixing the two is rejected.
func priceRange(r *http.Request) (lo, hi *int, err error) {
	q := r.URL.Query()
	bucket := q.Get("price")
	if bucket != "" && (q.Has("min_price") || q.Has("max_price")) {
		return nil, nil, fmt.Errorf("price cannot be combined with min_price or max_price")
	}
	if bucket != "" {
		lo, hi, err = query.ParsePriceBucket(bucket)
		if err != nil {
			return nil, nil, fmt.Errorf("price must be one of: all, %s", joinBuckets())
		}
		return lo, hi, nil
	}

	if lo, err = optionalInt(r, "min_price"); err != nil {
		return nil, nil, err
	}
	if hi, err = optionalInt(r, "max_price"); err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, fmt.Errorf("min_price must not exceed max_price")
	}
	return lo, hi, nil
}

func joinBuckets() string {
	return strings.Join(query.PriceBuckets(), ", ")
}

// noticeOrNil keeps a nil notice out of the response instead of encoding
// it as null.
func noticeOrNil(n *domain.Notice) any {
	if n == nil {
		return nil
	}
	return n
}
