package entity

import (
	"sort"
	"strings"
)

// Pages maps 1-based page numbers to extracted page text. A page whose text could not be
// extracted is present with an empty string.
type Pages map[int]string

// Numbers returns the page numbers in ascending order.
func (p Pages) Numbers() []int {
	nums := make([]int, 0, len(p))
	for n := range p {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Len is the number of pages.
func (p Pages) Len() int { return len(p) }

// Last returns the highest page number, or 0 for an empty document.
func (p Pages) Last() int {
	last := 0
	for n := range p {
		if n > last {
			last = n
		}
	}
	return last
}

// Joined concatenates page texts in page order, separated by a single space.
func (p Pages) Joined() string {
	nums := p.Numbers()
	parts := make([]string, 0, len(nums))
	for _, n := range nums {
		parts = append(parts, p[n])
	}
	return strings.Join(parts, " ")
}

// Append returns a new Pages holding p followed by next, with next renumbered to continue
// after the last page of p.
func (p Pages) Append(next Pages) Pages {
	out := p.Offset(0)
	for n, txt := range next.Offset(p.Last()) {
		out[n] = txt
	}
	return out
}

// PagesFromSlice numbers texts from 1 in slice order.
func PagesFromSlice(texts []string) Pages {
	out := make(Pages, len(texts))
	for i, t := range texts {
		out[i+1] = t
	}
	return out
}

// Offset returns a copy of p with every page number shifted by n.
func (p Pages) Offset(n int) Pages {
	out := make(Pages, len(p))
	for num, txt := range p {
		out[num+n] = txt
	}
	return out
}
