// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ClippyNotInstalledId Id = iota + 1
	RustfmtNotInstalledId
	CargoFuzzNotInstalledId
	NpmNotFoundId
	VSCodeNotFoundId
	HookAlreadyInstalledId
	GeneratedFileOutOfDateId
	SlowTestsSkippedId
	ProjectRootNotFoundId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var extraMd strings.Builder
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			extraMd.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			extraMd.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(string(i.mdMsg)+extraMd.String(), stylePath)
}

var (
	render = glamour.Render

	clippyNotInstalledIssue = &Issue{
		id: ClippyNotInstalledId,
		mdMsg: `
# cargo clippy is not available

` + "`xtask lint`" + ` runs clippy from the active toolchain, but ` + "`cargo clippy --version`" + ` failed.

## Things you can try
~~~
$ rustup component add clippy
~~~`,
		extLinks: []HttpLink{"https://github.com/rust-lang/rust-clippy#usage"},
	}

	rustfmtNotInstalledIssue = &Issue{
		id: RustfmtNotInstalledId,
		mdMsg: `
# rustfmt from the stable toolchain is missing

Formatting is always checked with the **stable** rustfmt so that every
contributor gets the same output.

## Things you can try
~~~
$ rustup component add rustfmt --toolchain stable
~~~`,
	}

	cargoFuzzNotInstalledIssue = &Issue{
		id: CargoFuzzNotInstalledId,
		mdMsg: `
# cargo-fuzz could not be installed

The fuzzer needs the ` + "`cargo fuzz`" + ` subcommand and a nightly toolchain.

## Things you can try
~~~
$ cargo install cargo-fuzz
$ rustup toolchain install nightly
~~~`,
		extLinks: []HttpLink{"https://rust-fuzz.github.io/book/cargo-fuzz.html"},
	}

	npmNotFoundIssue = &Issue{
		id: NpmNotFoundId,
		mdMsg: `
# npm is required to build the VS Code extension

## Things you can try
- Install NodeJS 12.x or newer (it ships with npm)
- Make sure ` + "`npm`" + ` is on your ` + "`PATH`" + `
- Install only the server:
~~~
$ xtask install --server
~~~`,
	}

	vscodeNotFoundIssue = &Issue{
		id: VSCodeNotFoundId,
		mdMsg: `
# VS Code was not found

None of ` + "`code`, `code-insiders`, `codium`, `code-oss`" + ` answered ` + "`--version`" + `.

## Things you can try
- Put the editor's ` + "`bin`" + ` directory on your ` + "`PATH`" + `
- On macOS run *Shell Command: Install 'code' command in PATH* from the command palette
- VS Code Remote is not supported: install the ` + "`.vsix`" + ` manually`,
	}

	hookAlreadyInstalledIssue = &Issue{
		id: HookAlreadyInstalledId,
		mdMsg: `
# A pre-commit hook is already installed

xtask does not overwrite existing hooks.

## Things you can try
~~~
$ rm .git/hooks/pre-commit
$ xtask install-pre-commit-hook
~~~`,
	}

	generatedFileOutOfDateIssue = &Issue{
		id: GeneratedFileOutOfDateId,
		mdMsg: `
# Generated code is out of date

A file produced by ` + "`xtask codegen`" + ` differs from what the sources describe.

## Things you can try
~~~
$ xtask codegen
$ git add -u
~~~`,
	}

	slowTestsSkippedIssue = &Issue{
		id: SlowTestsSkippedId,
		mdMsg: `
# Slow tests were skipped

` + "`target/.slow_tests_cookie`" + ` is written by the slow test suite. Without it the
cache would be trimmed for a build that did not run the whole suite.

## Things you can try
~~~
$ RUN_SLOW_TESTS=1 cargo test
~~~`,
	}

	projectRootNotFoundIssue = &Issue{
		id: ProjectRootNotFoundId,
		mdMsg: `
# Project root not found

xtask looks for the nearest ` + "`Cargo.toml`" + ` with a ` + "`[workspace]`" + ` table, starting
from the current directory.

## Things you can try
- Run xtask from inside the repository
- Pass ` + "`--root <dir>`" + ` or set ` + "`XTASK_ROOT`" + ``,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load xtask.cue

## Things you can try
- Check the CUE syntax of ` + "`xtask.cue`" + ` at the project root
- Print the effective configuration:
~~~
$ xtask config show
~~~

## Example configuration
~~~cue
clippy: allowed_lints: ["clippy::collapsible_if"]
fuzz: toolchain: "nightly"
~~~`,
	}

	issues = map[Id]*Issue{
		clippyNotInstalledIssue.Id():     clippyNotInstalledIssue,
		rustfmtNotInstalledIssue.Id():    rustfmtNotInstalledIssue,
		cargoFuzzNotInstalledIssue.Id():  cargoFuzzNotInstalledIssue,
		npmNotFoundIssue.Id():            npmNotFoundIssue,
		vscodeNotFoundIssue.Id():         vscodeNotFoundIssue,
		hookAlreadyInstalledIssue.Id():   hookAlreadyInstalledIssue,
		generatedFileOutOfDateIssue.Id(): generatedFileOutOfDateIssue,
		slowTestsSkippedIssue.Id():       slowTestsSkippedIssue,
		projectRootNotFoundIssue.Id():    projectRootNotFoundIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
	}
)

func Get(id Id) *Issue {
	return issues[id]
}
