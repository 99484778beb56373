package analyzer

import (
	"github.com/pattyshack/gt/parseutil"

	"github.com/pattyshack/gull/ast"
)

// Collects the module's function definitions by name.  exec callees which are
// not defined in the module are treated as external procedures.
type SignatureCollector struct {
	*parseutil.Emitter
	signatures map[string]*ast.FunctionDefinition
}

func NewSignatureCollector(emitter *parseutil.Emitter) *SignatureCollector {
	return &SignatureCollector{
		Emitter:    emitter,
		signatures: map[string]*ast.FunctionDefinition{},
	}
}

func (collector *SignatureCollector) Signatures() map[string]*ast.FunctionDefinition {
	return collector.signatures
}

func (collector *SignatureCollector) Process(funcDefs []*ast.FunctionDefinition) {
	for _, funcDef := range funcDefs {
		if funcDef.Name == "" {
			continue
		}

		prev, ok := collector.signatures[funcDef.Name]
		if ok {
			collector.Emit(
				funcDef.Loc(),
				"function (%s) previously defined at (%s)",
				funcDef.Name,
				prev.Loc().ShortString())
			continue
		}

		collector.signatures[funcDef.Name] = funcDef
	}
}
