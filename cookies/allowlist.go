package cookies

// AllowList is the fixed set of cookie names an endpoint may re-emit to the
// browser from an upstream response.
type AllowList map[string]struct{}

func NewAllowList(names ...string) AllowList {
	list := make(AllowList, len(names))
	for _, name := range names {
		list[name] = struct{}{}
	}
	return list
}

func (l AllowList) Contains(name string) bool {
	_, ok := l[name]
	return ok
}

// Per flow stage allow-lists. The login stage intentionally narrows the
// cookie set to the correlation values; the authorize stage needs the full
// upstream-issued set.
var (
	LoginStage     = NewAllowList(CookieState, CookieNonce, CookieIsTest)
	AuthorizeStage = NewAllowList(
		CookieState,
		CookieNonce,
		CookieUserSSO,
		CookieTokenID,
		CookieTokenType,
		CookieOrganizationID,
	)
)
