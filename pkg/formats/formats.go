// Package formats provides parsers for the mesh file formats the viewer reads.
//
// Only Wavefront OBJ is supported: positions, normals and triangular faces
// that reference both. See ParseOBJ for the accepted subset.
package formats
