package promotion

// Kind is the closed set of discount mechanics a promotion can carry.
type Kind string

const (
	KindPercentage   Kind = "percentage"
	KindFixed        Kind = "fixed"
	KindFreeShipping Kind = "free_shipping"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindPercentage, KindFixed, KindFreeShipping:
		return true
	default:
		return false
	}
}
