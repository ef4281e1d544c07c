// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	RepositoryOpenFailedId
	ScriptNotFoundId
	NoHandlerId
	DescriptorNotFoundId
	ResolverNotAvailableId
	ContainerEngineNotFoundId
	DependencyCopyFailedId
	TemplateNotFoundId
	ScaffoldFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

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

// Render renders the issue as terminal markdown using the named glamour
// style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where the file is looked up:
~~~
$ scriptpack config path
~~~
- Print the effective configuration:
~~~
$ scriptpack config show
~~~
- Write a fresh default file and compare:
~~~
$ scriptpack config init
~~~`,
	}

	repositoryOpenFailedIssue = &Issue{
		id: RepositoryOpenFailedId,
		mdMsg: `
# Could not open the script repository!

Each user's scripts live in a git repository below ` + "`repository.root`" + `.

## Things you can try:
- Check that the directory exists and is writable
- Point ` + "`repository.root`" + ` at another directory in your config
- Use the in-memory backend for a dry run:
~~~
$ SCRIPTPACK_REPOSITORY_BACKEND=memory scriptpack check <script>
~~~`,
	}

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# Script not found!

The script path does not exist in your repository at the requested revision.

## Things you can try:
- List what is stored:
~~~
$ scriptpack repo ls --recursive
~~~
- Drop ` + "`--revision`" + ` to use the latest revision
- Paths are relative to the repository root and use forward slashes`,
	}

	noHandlerIssue = &Issue{
		id: NoHandlerId,
		mdMsg: `
# No packaging strategy for this script!

Only owned ` + "`.groovy`" + ` scripts can be packaged.

## Supported layouts:
- Maven project: ` + "`<project>/pom.xml`" + ` and the script under ` + "`<project>/src/main/java/`" + `
- Plain script: any ` + "`.groovy`" + ` file, shipped with its sibling ` + "`lib/`" + ` and ` + "`resources/`" + ` folders

## Things you can try:
~~~
$ scriptpack check <script>
~~~`,
	}

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# Project descriptor missing!

A Maven project script was selected but ` + "`pom.xml`" + ` could not be read at the
project root. It may have been removed after the script was checked.

## Things you can try:
- Restore ` + "`pom.xml`" + ` next to ` + "`src/`" + `
- Package a specific revision that still has it with ` + "`--revision`",
	}

	resolverNotAvailableIssue = &Issue{
		id: ResolverNotAvailableId,
		mdMsg: `
# Dependency resolver not available!

The resolver copies a project's declared dependencies into ` + "`lib/`" + `.

## Things you can try:
- Install Maven and make sure ` + "`mvn`" + ` is on your PATH (native mode)
- Switch to container mode in your config:
~~~cue
resolver: mode: "container"
~~~
- Use virtual mode with a custom command for offline builds:
~~~cue
resolver: {
	mode:    "virtual"
	command: "echo skipping dependency copy"
}
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

Container mode requires Podman or Docker.

## Things you can try:
- Install Podman: https://podman.io/getting-started/installation
- Install Docker: https://docs.docker.com/get-docker/
- Choose the engine you have:
~~~cue
container_engine: "docker"
~~~`,
	}

	dependencyCopyFailedIssue = &Issue{
		id: DependencyCopyFailedId,
		mdMsg: `
# Dependency copy failed!

The bundle was written but the resolver exited with a non-zero status, so
` + "`lib/`" + ` may be incomplete. The resolver output is part of the bundle log.

## Things you can try:
- Check the repositories and versions declared in ` + "`pom.xml`" + `
- Run with ` + "`--verbose`" + ` to see the full log`,
	}

	templateNotFoundIssue = &Issue{
		id: TemplateNotFoundId,
		mdMsg: `
# Project templates not found!

` + "`templates.dir`" + ` must contain one directory per strategy key
(` + "`groovy_maven`" + `, ` + "`groovy`" + `).

## Things you can try:
- Unset ` + "`templates.dir`" + ` to use the built-in templates
- Copy the built-in layout and customize it`,
	}

	scaffoldFailedIssue = &Issue{
		id: ScaffoldFailedId,
		mdMsg: `
# Project creation stopped!

A template file could not be saved. Entries created before the failure are
kept in the repository.

## Things you can try:
- Inspect what was created:
~~~
$ scriptpack repo ls <project> --recursive
~~~
- Fix the failing template and run the command again with a new name`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The bundle target directory or the repository is not writable.

## Things you can try:
- Choose another ` + "`--out`" + ` directory
- Check ownership of the repository root`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		repositoryOpenFailedIssue.Id():    repositoryOpenFailedIssue,
		scriptNotFoundIssue.Id():          scriptNotFoundIssue,
		noHandlerIssue.Id():               noHandlerIssue,
		descriptorNotFoundIssue.Id():      descriptorNotFoundIssue,
		resolverNotAvailableIssue.Id():    resolverNotAvailableIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		dependencyCopyFailedIssue.Id():    dependencyCopyFailedIssue,
		templateNotFoundIssue.Id():        templateNotFoundIssue,
		scaffoldFailedIssue.Id():          scaffoldFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
