// Package collapsible implements the collapsible node-link tree.
//
// A [Diagram] owns a hierarchy wrapped in [Node] values that carry the
// expansion state, an identity token and the geometry used for animation.
// Initially only the root is expanded. Clicking a node with children
// toggles it and triggers one re-layout of the whole visible tree:
//
//	d := collapsible.New(root, collapsible.Options{})
//	res, _ := d.Click(token)      // Applied, Ignored or Dropped
//	d.Timeline().Advance(400 * time.Millisecond)
//	frame := d.Frame()            // geometry for a sink
//
// # Animation
//
// Every re-layout starts one node transition and one container-resize
// transition of the same duration on the diagram's [anim.Timeline].
// Elements are joined by token: entering elements grow out of the clicked
// node's previous position, exiting elements shrink into its new position
// and are removed at the end, and persisting elements move from where they
// are. When the node transition ends each node's destination becomes its
// source for the next re-layout.
//
// # Re-entrancy
//
// A diagram is busy from the start of a re-layout until its container
// transition ends. Clicks arriving while busy are dropped. The flag is per
// diagram, so independent diagrams never block each other.
//
// # Scrolling
//
// After a click's animation (plus a short delay) the diagram walks up the
// chain of [ScrollContainer] values hosting it to the first scrollable one,
// or the window, and centres the clicked node in it. Without any container
// nothing happens.
package collapsible
