package ast

import (
	"bytes"
	"fmt"
	"io"
)

const (
	indent = "  "
)

func TreeString(node Node, indent string) string {
	buffer := &bytes.Buffer{}
	_ = PrintTree(buffer, node, indent)
	return buffer.String()
}

func PrintTree(output io.Writer, node Node, indent string) error {
	printer := &treePrinter{
		indent:     indent,
		labelStack: []string{},
		writer:     output,
	}
	node.Walk(printer)
	return printer.err
}

type treePrinter struct {
	indent     string
	labelStack []string
	writer     io.Writer
	err        error
}

func (printer *treePrinter) write(format string, args ...interface{}) {
	if printer.err != nil {
		return
	}

	if len(args) == 0 {
		_, printer.err = printer.writer.Write([]byte(format))
	} else {
		_, printer.err = fmt.Fprintf(printer.writer, format, args...)
	}
}

func (printer *treePrinter) writeLabel() {
	label := ""
	if len(printer.labelStack) > 0 {
		label = printer.labelStack[len(printer.labelStack)-1]
		printer.labelStack = printer.labelStack[:len(printer.labelStack)-1]
	}

	if len(label) > 0 {
		printer.write("\n")
		printer.write(printer.indent)
		printer.write(label)
	} else {
		printer.write(printer.indent)
	}
}

func (printer *treePrinter) endNode() {
	printer.indent = printer.indent[:len(printer.indent)-len(indent)]
	printer.write("\n")
	printer.write(printer.indent)
	printer.write("]")
}

func (printer *treePrinter) push(labels ...string) {
	printer.indent += indent

	for len(labels) > 0 {
		last := labels[len(labels)-1]
		labels = labels[:len(labels)-1]

		printer.labelStack = append(printer.labelStack, last)
	}
}

func (printer *treePrinter) list(
	header string,
	elementType string,
	size int,
	argLabels ...string,
) {
	printer.write(header)
	if size == 0 && len(argLabels) == 0 {
		printer.write("]")
	} else {
		for i := size - 1; i >= 0; i-- {
			printer.labelStack = append(
				printer.labelStack,
				fmt.Sprintf("%s%d=", elementType, i))
		}

		// push in reverse order
		printer.push(argLabels...)
	}
}

func (printer *treePrinter) endList(size int) {
	if size > 0 {
		printer.endNode()
	}
}

func (printer *treePrinter) Enter(n Node) {
	printer.writeLabel()

	switch node := n.(type) {
	case *ValueDefinition:
		printer.write("[ValueDefinition: Name=%s Loc=%s", node.Name, node.Loc())
		if node.Type != nil {
			printer.push("Type=")
		} else {
			printer.push()
		}
		printer.write("\n%sDefUses: %d", printer.indent, len(node.DefUses))
	case *ValueReference:
		printer.write("[ValueReference: Name=%s Loc=%s", node.Name, node.Loc())
		printer.push()

		if node.UseDef != nil && node.UseDef.Type != nil {
			printer.write("\n%sType: %s", printer.indent, node.UseDef.Type)
		}
		parent := "(nil)"
		if node.UseDef != nil {
			parent = "(param) "
			if node.UseDef.Parent != nil {
				parent = "(ins) "
			}
			parent += node.UseDef.Loc().String()
		}
		printer.write("\n%sUseDef: %s", printer.indent, parent)

	case *ConstOperation:
		printer.write("[ConstOperation: Value=%d", node.Value)
		printer.push("Dest=")
	case *UnaryOperation:
		printer.write("[UnaryOperation: Kind=%s", node.Kind)
		printer.push("Dest=", "Src=")
	case *BinaryOperation:
		printer.write("[BinaryOperation: Kind=%s", node.Kind)
		printer.push("Dest=", "Src1=", "Src2=")
	case *AssertOperation:
		printer.write("[AssertOperation:")
		printer.push("Src=")
	case *ExecOperation:
		labels := []string{}
		for idx := range node.Dests {
			labels = append(labels, fmt.Sprintf("Dest%d=", idx))
		}
		printer.list(
			fmt.Sprintf("[ExecOperation: Callee=%s", node.Callee),
			"Argument",
			len(node.Args),
			labels...)

	case *Jump:
		printer.list(
			fmt.Sprintf("[Jump: Label=%s", node.Label),
			"Argument",
			len(node.Args))
	case *ConditionalJump:
		printer.list(
			fmt.Sprintf(
				"[ConditionalJump: TrueLabel=%s FalseLabel=%s",
				node.TrueLabel,
				node.FalseLabel),
			"Argument",
			len(node.Args),
			"Condition=")
	case *Return:
		printer.list("[Return:", "Value", len(node.Values))

	case ErrorType:
		printer.write("[ErrorType]")
	case ScalarType:
		printer.write("[ScalarType: Kind=%s]", node.Kind)

	case *FunctionDefinition:
		printer.write("[FunctionDefinition: Name=%s", node.Name)
		labels := []string{}
		for idx := range node.Parameters {
			labels = append(labels, fmt.Sprintf("Parameter%d=", idx))
		}
		for idx := range node.ReturnTypes {
			labels = append(labels, fmt.Sprintf("ReturnType%d=", idx))
		}
		for idx := range node.Blocks {
			labels = append(labels, fmt.Sprintf("Block%d=", idx))
		}
		printer.push(labels...)
	case *Block:
		labels := []string{}
		for idx := range node.Parameters {
			labels = append(labels, fmt.Sprintf("Parameter%d=", idx))
		}
		for idx := range node.Instructions {
			labels = append(labels, fmt.Sprintf("Instruction%d=", idx))
		}

		printer.write("[Block: Label=%s Loc=%s", node.Label, node.Loc())
		printer.push(labels...)

	default:
		printer.write("unhandled node: %v", n)
	}
}

func (printer *treePrinter) Exit(n Node) {
	switch node := n.(type) {
	case *ValueDefinition:
		printer.endNode()
	case *ValueReference:
		printer.endNode()

	case *ConstOperation:
		printer.endNode()
	case *UnaryOperation:
		printer.endNode()
	case *BinaryOperation:
		printer.endNode()
	case *AssertOperation:
		printer.endNode()
	case *ExecOperation:
		printer.endList(len(node.Args) + len(node.Dests))

	case *Jump:
		printer.endList(len(node.Args))
	case *ConditionalJump:
		printer.endNode()
	case *Return:
		printer.endList(len(node.Values))

	case *FunctionDefinition:
		printer.endNode()
	case *Block:
		printer.endNode()
	}
}
