package party

import "fmt"

// DefaultPageSize is the upstream listing convention: 50 posts per page.
const DefaultPageSize = 50

// PagePlan is the result of sizing a multi-page scrape.
type PagePlan struct {
	// Pages is the number of full listing pages to fetch.
	Pages int

	// Leftover is the number of posts on the final, partially-filled page.
	Leftover int

	// SinglePage is set when the effective bound fits in one listing page;
	// the scrape must then fetch exactly one page capped at Effective.
	SinglePage bool

	// Effective is the bound actually planned for: the requested quota
	// clamped to the creator's total post count.
	Effective int
}

// PlanPages computes how many listing pages to fetch and how many posts are
// left over on the final page. A quota of types.UnlimitedInstances (-1), or
// one exceeding totalPosts, is clamped to totalPosts. Inputs outside the
// contract (totalPosts < 0, quota < -1, pageSize < 1) are rejected.
//
// Invariant: when !SinglePage, Pages*pageSize + Leftover == Effective.
func PlanPages(totalPosts, quota, pageSize int) (PagePlan, error) {
	if totalPosts < 0 {
		return PagePlan{}, fmt.Errorf("total posts must be >= 0, got %d", totalPosts)
	}
	if quota < -1 {
		return PagePlan{}, fmt.Errorf("quota must be -1 or >= 0, got %d", quota)
	}
	if pageSize < 1 {
		return PagePlan{}, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}

	effective := totalPosts
	if quota != -1 && quota < totalPosts {
		effective = quota
	}

	return PagePlan{
		Pages:      effective / pageSize,
		Leftover:   effective % pageSize,
		SinglePage: effective <= pageSize,
		Effective:  effective,
	}, nil
}
