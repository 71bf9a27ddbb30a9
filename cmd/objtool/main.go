// objtool is a CLI utility for inspecting Wavefront OBJ files without a GPU.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/mithril/internal/engine/model"
	"github.com/Faultbox/mithril/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "ignored":
		cmdIgnored(args)
	case "dump":
		cmdDump(args)
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ inspection utility

Usage:
  objtool <command> [options]

Commands:
  info <file.obj>                 Show attribute counts and unified mesh size
  ignored <file.obj>              List lines the parser skipped
  dump [-o out.yaml] <file.obj>   Write the unified mesh as YAML
  check <file.obj>...             Parse and unify files, report failures

Examples:
  objtool info cube.obj
  objtool dump -o cube.yaml cube.obj
  objtool check models/*.obj`)
}

// load parses and unifies one file.
func load(path string) (*formats.OBJ, *model.Mesh, error) {
	obj, err := formats.LoadOBJ(path)
	if err != nil {
		return nil, nil, err
	}
	mesh, err := model.BuildMesh(obj)
	if err != nil {
		return nil, nil, err
	}
	return obj, mesh, nil
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool info <file.obj>")
		os.Exit(1)
	}

	obj, mesh, err := load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Positions: %d\n", len(obj.Positions))
	fmt.Printf("Normals:   %d\n", len(obj.Normals))
	fmt.Printf("Triangles: %d\n", obj.TriangleCount())
	fmt.Printf("Ignored:   %d lines\n", len(obj.Ignored))
	fmt.Println()
	fmt.Println("Unified mesh:")
	fmt.Printf("  Vertices: %d\n", mesh.VertexCount())
	fmt.Printf("  Indices:  %d\n", len(mesh.Indices))
	if corners := len(obj.Corners); corners > 0 {
		fmt.Printf("  Reuse:    %.1f%% of corners share a vertex\n",
			100*float64(corners-mesh.VertexCount())/float64(corners))
	}
	b := mesh.Bounds
	fmt.Printf("  Bounds:   (%g, %g, %g) - (%g, %g, %g)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}

func cmdIgnored(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool ignored <file.obj>")
		os.Exit(1)
	}

	obj, err := formats.LoadOBJ(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, pe := range obj.Ignored {
		fmt.Printf("%6d  %s\n", pe.Line, pe.Text)
	}
	fmt.Fprintf(os.Stderr, "\n(%d lines ignored)\n", len(obj.Ignored))
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default stdout)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool dump [-o out.yaml] <file.obj>")
		os.Exit(1)
	}

	_, mesh, err := load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *output == "" {
		if err := writeDump(os.Stdout, fs.Arg(0), mesh); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing dump: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := writeDumpFile(*output, fs.Arg(0), mesh); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dump: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote: %s (%d vertices, %d triangles)\n", *output, mesh.VertexCount(), mesh.TriangleCount())
}

func cmdCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: objtool check <file.obj>...")
		os.Exit(1)
	}

	failed := 0
	for _, path := range args {
		obj, mesh, err := load(path)
		if err != nil {
			fmt.Printf("FAIL  %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("ok    %s (%d triangles, %d vertices, %d ignored)\n",
			path, obj.TriangleCount(), mesh.VertexCount(), len(obj.Ignored))
	}

	fmt.Fprintf(os.Stderr, "\n(%d of %d files failed)\n", failed, len(args))
	if failed > 0 {
		os.Exit(1)
	}
}
