package enums

// ServiceKind names a board service attached to an order.
type ServiceKind string

const (
	ServiceKindCutting     ServiceKind = "cutting"
	ServiceKindEdgeBanding ServiceKind = "edge_banding"
)

func (k ServiceKind) String() string {
	return string(k)
}

func (k ServiceKind) IsValid() bool {
	return k == ServiceKindCutting || k == ServiceKindEdgeBanding
}
