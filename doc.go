/*
Package paredros is an interactive debugger for grammar-driven parsers.

Paredros runs a parse for a grammar and an input text and intercepts every
decision the parsing algorithm makes: which alternative it took, how much
lookahead it needed to get there, where it backtracked and where it had to
recover from a syntax error. The decisions are assembled into a navigable
trace (a traversal), which front ends use to step through a parse. Package
structure is as follows:

■ lr: Package lr implements grammars and static grammar analysis. Sub-packages
contain a top-down parser (ll), scanners, and sparse tables.

■ lang: Package lang compiles EBNF grammar descriptions into grammars and lexers.

■ debug: Package debug models decision events, intercepts a parser and tracks
the rule call stack.

■ traversal: Package traversal builds and queries the tree of rule invocations
and decisions.

■ session: Package session is the facade which glues everything together.

■ cmd/pdb: An interactive console debugger on top of package session.

The base package contains data types which are used throughout all the other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package paredros
