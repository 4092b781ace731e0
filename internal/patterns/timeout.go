package patterns

import "time"

// DefaultTimeout bounds outbound gateway calls; the surrounding HTTP
// infrastructure owns request-level timeouts.
const DefaultTimeout = 3 * time.Second
