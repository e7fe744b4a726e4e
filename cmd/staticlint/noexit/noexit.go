// Package noexit provides an analyzer that forbids direct os.Exit calls in
// the main function of package main.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// NoExitAnalyzer reports direct os.Exit calls in func main of package main.
var NoExitAnalyzer = &analysis.Analyzer{
	Name: "noexit",
	Doc:  "forbids direct os.Exit calls in the main function of package main",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		if file.Name.Name != "main" {
			continue
		}

		ast.Inspect(file, func(node ast.Node) bool {
			funcDecl, ok := node.(*ast.FuncDecl)
			if !ok {
				return true
			}

			if funcDecl.Name.Name != "main" || funcDecl.Body == nil {
				return true
			}

			ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
				callExpr, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}

				selExpr, ok := callExpr.Fun.(*ast.SelectorExpr)
				if !ok {
					return true
				}

				if selExpr.Sel.Name != "Exit" {
					return true
				}

				if ident, ok := selExpr.X.(*ast.Ident); ok {
					if obj := pass.TypesInfo.Uses[ident]; obj != nil {
						if pkg, ok := obj.(*types.PkgName); ok {
							if pkg.Imported().Path() == "os" {
								pass.Reportf(callExpr.Pos(), "direct os.Exit call in func main is forbidden")
							}
						}
					}
				}

				return true
			})

			return true
		})
	}

	return nil, nil
}
