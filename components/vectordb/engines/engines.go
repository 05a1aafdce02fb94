package engines

import (
	"github.com/bububa/teachassist/components/vectordb/engines/chromem"
	"github.com/bububa/teachassist/components/vectordb/engines/memory"
	"github.com/bububa/teachassist/components/vectordb/engines/milvus"
	"github.com/bububa/teachassist/components/vectordb/engines/pinecone"
)

var (
	FromChromem  = chromem.New
	OpenChromem  = chromem.Open
	FromMemory   = memory.New
	FromMilvus   = milvus.New
	FromPinecone = pinecone.New
)
