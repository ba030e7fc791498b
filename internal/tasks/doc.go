// Package tasks owns the "Generate Playlist" action shared by every surface.
//
// # Trigger
//
// [Trigger] holds the busy flag and runs one gateway call at a time:
//
//  1. [Trigger.Start] flips busy false→true synchronously and returns
//     [shared.ErrBusy] instead when a call is already in flight
//  2. the gateway call runs on its own goroutine
//  3. on settlement the trigger sends exactly one [Notification],
//     records the run through the optional [Recorder], then flips busy back
//
// Step 3 runs from a deferred function, so busy is cleared even when the
// gateway panics. Busy observers registered with [Trigger.OnBusyChange] see
// both transitions, which is how surfaces disable their control.
//
// There is no retry, debounce or queue. The busy guard is the only admission control.
package tasks
