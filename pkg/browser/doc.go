// Package browser owns the link to an already-running remote browser reached
// over the Chrome DevTools Protocol and decides which tab every bridge
// operation targets.
//
// A Session bundles four pieces:
//
//   - Connection dials the remote endpoint once and reuses the link until it
//     drops or is torn down.
//   - Resolver picks the "active" tab from the live page set using a fixed
//     chain of tiers (focused, titled, most recent regular, anything).
//   - PageState remembers the page opened by the last explicit navigation.
//   - CloseAll releases the explicit page, context, browser link and driver,
//     in that order, attempting every step.
//
// The package performs no locking. Callers serialize access to a Session.
//
// Browser access goes through the Driver, Browser, Context, Page and Element
// interfaces. NewPlaywrightDriver adapts playwright-go; package browsertest
// provides scripted fakes.
package browser
