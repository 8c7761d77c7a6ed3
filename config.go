// This source file is part of the EdgeDB open source project.
//
// Copyright 2020-present EdgeDB Inc. and the EdgeDB authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tessera

import "github.com/tesseradb/tesseradb-go/internal"

// Config carries everything a Connection needs that was negotiated
// during the handshake this core does not implement: the agreed
// protocol version and the server's initial parameter status values.
// Callers that do their own handshake build a Config from its result and
// hand it to NewConnection.
type Config struct {
	Version internal.ProtocolVersion
	Params  map[string]string
}
