package cronexpr

import "errors"

// errBadExpr is wrapped by every parse failure so callers can match on it
// with errors.Is without depending on exact message text.
var errBadExpr = errors.New("invalid cron expression")
