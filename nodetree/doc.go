// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nodetree is the runtime tree engine that underlies grammar-driven
// parsing, transformation and serialization in DHParser-style toolchains.
//
// It owns the node-tree data model (Node, RootNode, FrozenNode), the error
// model with source-location mapping (Error, SourceMap), the content-mapping
// and markup engine (ContentMapping) that lets callers wrap ranges of a
// tree's projected text content with new structure without disturbing
// existing boundaries, and the depth-first transformation dispatcher that
// applies name-keyed rewrite rules across a tree.
//
// The package does not parse any source language itself. Trees are built by
// an external parser (or a deserializer in this package) and handed to a
// RootNode, which owns the tree's error list and source bookkeeping for the
// remainder of its life.
package nodetree
