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

// Package message holds the wire message type tags for the four-phase
// Prepare/Describe/Execute/Sync exchange.
package message

// Message is a single byte message type tag.
type Message uint8

// Messages sent by the server.
const (
	PrepareComplete        Message = 0x31
	CommandDataDescription Message = 0x54
	Data                   Message = 0x44
	CommandComplete        Message = 0x43
	ReadyForCommand        Message = 0x5a
	ErrorResponse          Message = 0x45
	ParameterStatus        Message = 0x53
	LogMessage             Message = 0x4c
)

// Messages sent by the client.
const (
	Prepare           Message = 0x50
	DescribeStatement Message = 0x44
	Execute           Message = 0x4f
	ExecuteScript     Message = 0x51
	Flush             Message = 0x48
	Sync              Message = 0x53
	Terminate         Message = 0x58
)

// String renders m the way protocol traces do, falling back to Unknown
// for anything outside this set.
func (m Message) String() string {
	switch m {
	case PrepareComplete:
		return "PrepareComplete"
	case CommandDataDescription:
		return "CommandDataDescription"
	case Data: // == DescribeStatement on the wire; distinguished by direction
		return "Data/DescribeStatement"
	case CommandComplete:
		return "CommandComplete"
	case ReadyForCommand:
		return "ReadyForCommand"
	case ErrorResponse:
		return "ErrorResponse"
	case ParameterStatus: // == Sync on the wire; distinguished by direction
		return "ParameterStatus/Sync"
	case LogMessage:
		return "LogMessage"
	case Prepare:
		return "Prepare"
	case Execute:
		return "Execute"
	case ExecuteScript:
		return "ExecuteScript"
	case Flush:
		return "Flush"
	case Terminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}
