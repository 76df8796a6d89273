// Command ssheetctl is a minimal line-oriented REPL over a Sheet,
// useful for manual exploration and as a worked example of the
// facade's API. It is a demo harness, not a product front-end.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wiredcell/ssheet"
)

func main() {
	rows := flag.Int("rows", 0, "override default row count (0 = engine default)")
	cols := flag.Int("cols", 0, "override default column count (0 = engine default)")
	flag.Parse()

	var opts []ssheet.Option
	if *rows > 0 {
		opts = append(opts, ssheet.WithRows(*rows))
	}
	if *cols > 0 {
		opts = append(opts, ssheet.WithCols(*cols))
	}
	sheet := ssheet.New(opts...)

	fmt.Println("ssheetctl - type HELP for commands, QUIT to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := dispatch(sheet, line); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func dispatch(sheet *ssheet.Sheet, line string) error {
	fields := strings.Fields(line)
	cmd := strings.ToUpper(fields[0])

	switch cmd {
	case "QUIT", "EXIT":
		os.Exit(0)
		return nil

	case "HELP":
		fmt.Println("SET <cell> <number>")
		fmt.Println("TEXT <cell> <text...>")
		fmt.Println("FORMULA <cell> <formula text, no leading '='>")
		fmt.Println("GET <cell>")
		fmt.Println("SHOW <topLeft> <bottomRight>")
		fmt.Println("COPY <from> <to>")
		fmt.Println("UNDO")
		fmt.Println("REDO")
		fmt.Println("FIND <text>")
		return nil

	case "SET":
		if len(fields) != 3 {
			return fmt.Errorf("usage: SET <cell> <number>")
		}
		cell, ok := ssheet.ParseLabel(fields[1])
		if !ok {
			return fmt.Errorf("invalid cell: %s", fields[1])
		}
		f, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("invalid number: %s", fields[2])
		}
		return sheet.SetValue(cell, ssheet.NumberValue(f))

	case "TEXT":
		if len(fields) < 3 {
			return fmt.Errorf("usage: TEXT <cell> <text...>")
		}
		cell, ok := ssheet.ParseLabel(fields[1])
		if !ok {
			return fmt.Errorf("invalid cell: %s", fields[1])
		}
		return sheet.SetValue(cell, ssheet.TextValue(strings.Join(fields[2:], " ")))

	case "FORMULA":
		if len(fields) < 3 {
			return fmt.Errorf("usage: FORMULA <cell> <formula>")
		}
		cell, ok := ssheet.ParseLabel(fields[1])
		if !ok {
			return fmt.Errorf("invalid cell: %s", fields[1])
		}
		return sheet.SetFormulaText(cell, strings.Join(fields[2:], " "))

	case "GET":
		if len(fields) != 2 {
			return fmt.Errorf("usage: GET <cell>")
		}
		cell, ok := ssheet.ParseLabel(fields[1])
		if !ok {
			return fmt.Errorf("invalid cell: %s", fields[1])
		}
		fmt.Println(sheet.String(cell))
		return nil

	case "SHOW":
		if len(fields) != 3 {
			return fmt.Errorf("usage: SHOW <topLeft> <bottomRight>")
		}
		tl, ok1 := ssheet.ParseLabel(fields[1])
		br, ok2 := ssheet.ParseLabel(fields[2])
		if !ok1 || !ok2 {
			return fmt.Errorf("invalid cell range: %s:%s", fields[1], fields[2])
		}
		for cell := range sheet.Populated(tl, br) {
			fmt.Printf("%s = %s\n", ssheet.Label(cell.Addr), sheet.Display(cell.Addr))
		}
		return nil

	case "COPY":
		if len(fields) != 3 {
			return fmt.Errorf("usage: COPY <from> <to>")
		}
		from, ok1 := ssheet.ParseLabel(fields[1])
		to, ok2 := ssheet.ParseLabel(fields[2])
		if !ok1 || !ok2 {
			return fmt.Errorf("invalid cell: %s or %s", fields[1], fields[2])
		}
		return sheet.CopyFormula(from, to)

	case "UNDO":
		ok, err := sheet.Undo()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("nothing to undo")
		}
		return nil

	case "REDO":
		ok, err := sheet.Redo()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("nothing to redo")
		}
		return nil

	case "FIND":
		if len(fields) < 2 {
			return fmt.Errorf("usage: FIND <text>")
		}
		needle := strings.Join(fields[1:], " ")
		if cell, ok := sheet.SearchFromStart(needle); ok {
			fmt.Println(sheet.String(cell))
		} else {
			fmt.Println("not found")
		}
		return nil

	default:
		return fmt.Errorf("unknown command: %s (try HELP)", cmd)
	}
}
