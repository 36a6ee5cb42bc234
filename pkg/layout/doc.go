// Package layout computes node geometry for the hierarchy views.
//
// Two layouts are provided:
//
//   - [Tidy]: the Reingold-Tilford tidy tree in Buchheim's linear-time
//     form. It places every node on a breadth axis so that subtrees never
//     overlap and parents sit centred over their children, and on a depth
//     axis at a fixed spacing per level. It is generic over the caller's
//     node type so that a diagram can lay out only the children it
//     currently shows.
//
//   - [Partition]: the adjacency (icicle/sunburst) partition. Every node
//     receives a breadth interval proportional to its summed value and a
//     depth band of equal thickness. The result is computed once and is
//     never changed by interaction; views zoom by rescaling.
//
// Both are pure functions of their input.
package layout
