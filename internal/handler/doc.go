// SPDX-License-Identifier: MPL-2.0

// Package handler turns a script stored in the repository into a
// distribution bundle and scaffolds new script projects.
//
// A Handler is one packaging strategy. GroovyMavenHandler packages Maven
// style projects (a pom.xml at the project root, sources under
// src/main/java, resources under src/main/resources) and resolves external
// dependencies with the configured resolver. GroovyScriptHandler packages a
// single script with its sibling lib/ and resources/ folders. A Registry
// picks the first applicable handler by ascending order.
package handler
