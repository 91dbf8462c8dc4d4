// Package pagination normalizes offset-based page requests.
package pagination

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// PageRequest is a normalized zero-based page request.
type PageRequest struct {
	Page int
	Size int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// Normalize clamps a zero-based page number and size into a PageRequest.
func Normalize(page, size int, cfg PageSizeConfig) PageRequest {
	if page < 0 {
		page = 0
	}
	return PageRequest{
		Page: page,
		Size: ClampPageSize(size, cfg),
	}
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// TotalPages reports the page count for a total element count.
func TotalPages(totalElements int64, size int) int64 {
	if size <= 0 || totalElements <= 0 {
		return 0
	}
	return (totalElements + int64(size) - 1) / int64(size)
}
