// Command scvalc compiles a .scval schema file to a .scvalbc bytecode
// blob. Flag-based CLI, matching the teacher's own cmd/main.go idiom.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/gyakoo/scval"
)

const defaultWritePermission = 0644 // -rw-r--r--

func main() {
	var (
		schemaPath  = flag.String("schema", "", "Path to the .scval schema file")
		outPath     = flag.String("out", "", "Path to write the compiled .scvalbc bytecode")
		astOnly     = flag.Bool("ast-only", false, "Print the parsed schema tree and exit")
		verifyNames = flag.Bool("verify-names", false, "Reject the schema if two identifiers hash-collide")
		rejectEmpty = flag.Bool("reject-empty-children", false, "Reject CHILDREN/ATTRS blocks with no declared members")
		disassemble = flag.Bool("asm", false, "Print the compiled bytecode disassembly")
	)
	flag.Parse()

	if *schemaPath == "" {
		log.Fatal("Schema not informed")
	}

	src, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("Can't read schema file: %s", err.Error())
	}

	tree, err := scval.Parse(src)
	if err != nil {
		log.Fatalf("Can't parse schema: %s", err.Error())
	}
	if *astOnly {
		log.Println(tree.PrettyString())
		return
	}

	cfg := scval.NewConfig()
	cfg.SetBool("hash.verify_names", *verifyNames)
	cfg.SetBool("compiler.reject_empty_children", *rejectEmpty)

	bc, err := scval.Compile(tree, cfg)
	if err != nil {
		log.Fatalf("Can't compile schema: %s", err.Error())
	}

	if *disassemble {
		log.Println(bc.Disassemble())
	}

	if *outPath == "" {
		return
	}
	if err := os.WriteFile(*outPath, bc.Save(), defaultWritePermission); err != nil {
		log.Fatalf("Can't write bytecode file: %s", err.Error())
	}
}
