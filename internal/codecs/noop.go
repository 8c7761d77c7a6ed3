// This source file is part of the EdgeDB open source project.
//
// Copyright EdgeDB Inc. and the EdgeDB authors.
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

package codecs

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/tesseradb/tesseradb-go/internal/buff"
	"github.com/tesseradb/tesseradb-go/internal/descriptor"
)

var (
	// NoOpDecoder decodes the empty descriptor: a statement that returns
	// no meaningful result, e.g. a DDL command.
	NoOpDecoder = noOpDecoder{}

	// NoOpEncoder encodes the empty descriptor.
	NoOpEncoder = noOpEncoder{}
)

type noOpDecoder struct{}

func (c noOpDecoder) DescriptorID() uuid.UUID { return descriptor.IDZero }

func (c noOpDecoder) Decode(_ *buff.Reader, _ reflect.Value, _ Path) error {
	return nil
}

type noOpEncoder struct{}

func (c noOpEncoder) DescriptorID() uuid.UUID { return descriptor.IDZero }

func (c noOpEncoder) Encode(w *buff.Writer, _ interface{}, _ Path) error {
	w.PushUint32(0)
	return nil
}
