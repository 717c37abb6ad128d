// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"encoding/gob"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lassandro/aliendie/pkg/assembler"
	"github.com/lassandro/aliendie/pkg/frame"
)

var helpvar bool
var debugvar bool
var disasmvar bool
var outvar string

const usage = "aliendie-asm [-debug] [-disasm] [-out outfile] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'"+assembler.SYMTABLE_EXT+"'",
	)
	flag.BoolVar(
		&disasmvar, "disasm", false,
		"Prints a compiled animation file back as source",
	)
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	flag.Parse()
}

func disassemble(path string) int {
	data, err := os.ReadFile(path)

	if err != nil {
		log.Println(err)
		return 1
	}

	var anim frame.Animation

	if err := anim.UnmarshalBinary(data); err != nil {
		log.Println(err)
		return 1
	}

	var labels map[uint8]string

	symfile := strings.TrimSuffix(path, filepath.Ext(path)) + assembler.SYMTABLE_EXT

	if file, err := os.Open(symfile); err == nil {
		var symtable assembler.SymTable

		if err := gob.NewDecoder(file).Decode(&symtable); err == nil {
			labels = symtable.Labels
		}

		file.Close()
	}

	if err := assembler.DisassembleAnimation(os.Stdout, &anim, labels); err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

func printErrors(input io.ReadSeeker, errs []error) {
	for _, err := range errs {
		tokenErr, ok := err.(assembler.TokenError)

		if !ok || input == os.Stdin {
			log.Println(err)
			continue
		}

		cursor := tokenErr.GetPosition()

		if _, err := input.Seek(cursor.LineByte, io.SeekStart); err != nil {
			panic(err)
		}

		line, _ := bufio.NewReader(input).ReadString('\n')
		line = strings.TrimSuffix(line, "\n")

		size := int(cursor.Size)
		if size < 1 {
			size = 1
		}

		underlinefmt := fmt.Sprintf(
			"%% %ds%s",
			int(cursor.Byte-cursor.LineByte)+1,
			strings.Repeat("~", size-1),
		)

		log.Printf(
			"%s\n%s\n\033[31m%s\033[0m",
			err,
			line,
			fmt.Sprintf(underlinefmt, "^"),
		)
	}
}

func aliendie_asm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if disasmvar {
		if len(args) != 1 {
			log.Println(usage)
			return 1
		}

		return disassemble(args[0])
	}

	var infile string
	var input io.ReadSeeker

	if stat, _ := os.Stdin.Stat(); stat.Mode()&os.ModeCharDevice == 0 {
		input = os.Stdin
		log.SetPrefix("\033[1m<stdin>:\033[0m")

		if outvar == "" {
			outvar = "out" + assembler.BINARY_EXT
		}
	} else {
		if len(args) != 1 {
			log.Println(usage)
			return 1
		}

		file, err := os.Open(args[0])

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			log.Println(err)
			return 1
		} else if stat.IsDir() {
			log.Printf("%s is not a valid animation source file", filename)
			return 1
		}

		input = file
		infile = file.Name()
		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", filename))

		if outvar == "" {
			outvar = strings.TrimSuffix(
				filename, filepath.Ext(filename),
			) + assembler.BINARY_EXT
		}
	}

	var symtable assembler.SymTable
	var symtarget *assembler.SymTable = nil

	if debugvar {
		if input != os.Stdin {
			var err error
			if symtable.Source, err = filepath.Abs(infile); err != nil {
				log.Println(err)
				symtable.Source = ""
			}
		}
		symtarget = &symtable
	}

	result, errs := assembler.AssembleAnimation(input, symtarget)

	if len(errs) > 0 {
		printErrors(input, errs)
		return 1
	}

	data, err := result.MarshalBinary()

	if err != nil {
		log.Println("Error encoding animation")
		log.Println(err)
		return 1
	}

	if err := os.WriteFile(outvar, data, 0666); err != nil {
		log.Println("Error writing output file")
		log.Println(err)
		return 1
	}

	if debugvar {
		filename := strings.TrimSuffix(
			outvar, filepath.Ext(outvar),
		) + assembler.SYMTABLE_EXT

		if file, err := os.Create(filename); err == nil {
			if err := gob.NewEncoder(file).Encode(symtable); err != nil {
				log.Println("Error writing symbol table")
				log.Println(err)
				return 1
			}

			file.Close()
		} else {
			log.Println("Error creating symbol table")
			log.Println(err)
			return 1
		}
	}

	return 0
}

func main() {
	os.Exit(aliendie_asm())
}
