// Package status holds the status code enumeration shared by the server and the client.
package status

import "strconv"

// Code is a status code. Success is the only non-failure value.
type Code int32

// Server-side codes.
const (
	Success               Code = 0
	UnexpectedError       Code = 1
	ConnectFailed         Code = 2
	PermissionDenied      Code = 3
	CollectionNotExists   Code = 4
	IllegalArgument       Code = 5
	IllegalDimension      Code = 7
	IllegalIndexType      Code = 8
	IllegalCollectionName Code = 9
	IllegalTopK           Code = 10
	IllegalRowRecord      Code = 11
	IllegalVectorID       Code = 12
	IllegalSearchResult   Code = 13
	FileNotFound          Code = 14
	MetaFailed            Code = 15
	CacheFailed           Code = 16
	CannotCreateFolder    Code = 17
	CannotCreateFile      Code = 18
	CannotDeleteFolder    Code = 19
	CannotDeleteFile      Code = 20
	BuildIndexError       Code = 21
	IllegalNLIST          Code = 22
	IllegalMetricType     Code = 23
	OutOfMemory           Code = 24
	IndexNotExist         Code = 25
	EmptyCollection       Code = 26
	NotReadyServe         Code = 27
)

// Client-side codes, never produced by a server.
const (
	RPCError           Code = -1
	ClientNotConnected Code = -2
	Unknown            Code = -3
	VersionMismatch    Code = -4
	ParamError         Code = -5
	IllegalResponse    Code = -6
)

var names = map[Code]string{
	Success:               "Success",
	UnexpectedError:       "UnexpectedError",
	ConnectFailed:         "ConnectFailed",
	PermissionDenied:      "PermissionDenied",
	CollectionNotExists:   "CollectionNotExists",
	IllegalArgument:       "IllegalArgument",
	IllegalDimension:      "IllegalDimension",
	IllegalIndexType:      "IllegalIndexType",
	IllegalCollectionName: "IllegalCollectionName",
	IllegalTopK:           "IllegalTopK",
	IllegalRowRecord:      "IllegalRowRecord",
	IllegalVectorID:       "IllegalVectorID",
	IllegalSearchResult:   "IllegalSearchResult",
	FileNotFound:          "FileNotFound",
	MetaFailed:            "MetaFailed",
	CacheFailed:           "CacheFailed",
	CannotCreateFolder:    "CannotCreateFolder",
	CannotCreateFile:      "CannotCreateFile",
	CannotDeleteFolder:    "CannotDeleteFolder",
	CannotDeleteFile:      "CannotDeleteFile",
	BuildIndexError:       "BuildIndexError",
	IllegalNLIST:          "IllegalNLIST",
	IllegalMetricType:     "IllegalMetricType",
	OutOfMemory:           "OutOfMemory",
	IndexNotExist:         "IndexNotExist",
	EmptyCollection:       "EmptyCollection",
	NotReadyServe:         "NotReadyServe",
	RPCError:              "RpcError",
	ClientNotConnected:    "ClientNotConnected",
	Unknown:               "Unknown",
	VersionMismatch:       "VersionMismatch",
	ParamError:            "ParamError",
	IllegalResponse:       "IllegalResponse",
}

func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// OK reports whether c is Success.
func (c Code) OK() bool { return c == Success }
