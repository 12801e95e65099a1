// Package discovery defines the application discovery capability and its
// aggregation across providers.
//
// A provider package implements Discoverer and registers a factory from
// its init function:
//
//	func init() {
//	    discovery.Register(func() (discovery.Discoverer, error) {
//	        return newDiscoverer()
//	    })
//	}
//
// The Aggregator loads all registered factories once and fans a discovery
// run out to every provider. One provider failing, at construction or at
// run time, never suppresses the others.
package discovery
