// Package tspoet generates TypeScript source code.
//
// Declarations are immutable specs built with builders: Interface, Class,
// Enum, TypeAlias, Function, Property, Namespace. Each spec has a ToBuilder
// method for copy-and-modify use. Code fragments are CodeBlocks built from
// format strings (see CodeBlock for the placeholders), and type references
// are TypeName values.
//
// A FileSpec renders a whole module. Every type referenced through %T is
// recorded; FileSpec turns those references into import statements, with
// relative paths for modules in the generated tree and numeric aliases for
// names that would otherwise collide:
//
//	api := tspoet.Interface("Api").
//		AddModifiers(tspoet.Export).
//		AddProperty("events", tspoet.Parameterized(tspoet.TypeNameOf("Observable@rxjs"), tspoet.String), false).
//		MustBuild()
//	file := tspoet.File("generated/api/Api").AddMember(api).MustBuild()
//	src, err := file.Render()
//
// produces
//
//	import {Observable} from "rxjs";
//
//	export interface Api {
//
//	  events: Observable<string>;
//
//	}
//
// Errors are marked with ErrTemplate, ErrResolution or ErrBuilder and can be
// tested with errors.Is.
package tspoet
