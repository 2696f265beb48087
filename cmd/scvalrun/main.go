// Command scvalrun loads a compiled .scvalbc bytecode blob and
// validates an XML document against it, using internal/xmlcursor and
// internal/builtins so the whole pipeline runs against a real
// document rather than a mock. Flag-based CLI, matching the teacher's
// own cmd/main.go idiom.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/gyakoo/scval"
	"github.com/gyakoo/scval/internal/builtins"
	"github.com/gyakoo/scval/internal/xmlcursor"
)

func main() {
	var (
		bytecodePath = flag.String("bytecode", "", "Path to the compiled .scvalbc bytecode")
		docPath      = flag.String("doc", "", "Path to the XML document to validate")
		color        = flag.Bool("color", false, "Print the disassembly with ANSI syntax highlighting")
		disassemble  = flag.Bool("asm", false, "Print the bytecode disassembly before validating")
	)
	flag.Parse()

	if *bytecodePath == "" {
		log.Fatal("Bytecode not informed")
	}
	if *docPath == "" {
		log.Fatal("Document not informed")
	}

	blob, err := os.ReadFile(*bytecodePath)
	if err != nil {
		log.Fatalf("Can't read bytecode file: %s", err.Error())
	}
	bc, err := scval.Load(blob)
	if err != nil {
		log.Fatalf("Can't load bytecode: %s", err.Error())
	}

	if *disassemble {
		if *color {
			log.Println(bc.DisassembleColor())
		} else {
			log.Println(bc.Disassemble())
		}
	}

	doc, err := os.Open(*docPath)
	if err != nil {
		log.Fatalf("Can't open document: %s", err.Error())
	}
	defer doc.Close()

	cursor, err := xmlcursor.New(doc, builtins.Registry())
	if err != nil {
		log.Fatalf("Can't parse document: %s", err.Error())
	}

	accepted, err := scval.Run(bc, cursor)
	if err != nil {
		log.Fatalf("Run error: %s", err.Error())
	}
	if !accepted {
		log.Println("REJECT")
		os.Exit(1)
	}
	log.Println("OK")
}
