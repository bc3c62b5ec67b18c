package program

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stephengoldbaum/icppgo/layout"
)

const tinyBlob = `{
  "typeDecls": [
    {
      "tid": 200,
      "name": "Point",
      "category": "Struct",
      "props": [1, 2],
      "propTypes": [4, 4],
      "propOffsets": [0, 8]
    }
  ],
  "fieldDecls": [],
  "invokeDecls": [
    {
      "id": 1,
      "name": "addOne",
      "isPrimitive": false,
      "stackBytes": 16,
      "maskSlots": 0,
      "params": [{"name": "x", "type": 4, "frameOffset": 0, "isOptional": false}],
      "resultType": 4,
      "resultArg": 8,
      "body": [
        {"tag": "CheckedAdd", "trgt": {"offset": 8}, "args": [{"kind": "param", "location": 0}, {"kind": "const", "location": 0}], "numwidth": "Int"},
        {"tag": "ReturnAssign", "src": {"kind": "local", "location": 8}}
      ]
    },
    {
      "id": 2,
      "name": "number_add",
      "isPrimitive": true,
      "params": [{"name": "a", "type": 4, "frameOffset": 0}, {"name": "b", "type": 4, "frameOffset": 8}],
      "resultType": 4,
      "implkey": "number_add",
      "pcodes": [4]
    }
  ],
  "constDecls": [
    {"name": "one", "type": 4, "offset": 0}
  ],
  "constPool": "AQAAAAAAAAA=",
  "primaryEntry": 1
}`

func TestDecodeTinyBlob(t *testing.T) {
	blob, err := Decode([]byte(tinyBlob))
	require.NoError(t, err)
	require.Len(t, blob.TypeDecls, 1)
	require.Equal(t, "Point", blob.TypeDecls[0].Name)
	require.Len(t, blob.InvokeDecls, 2)
	require.Equal(t, uint32(1), blob.PrimaryEntry)
}

func TestLoadBuildsRegistryAndInvokes(t *testing.T) {
	blob, err := Decode([]byte(tinyBlob))
	require.NoError(t, err)

	p, err := Load(blob)
	require.NoError(t, err)

	require.NotNil(t, p.Registry.Lookup(layout.TypeID(200)))
	require.Equal(t, "Point", p.Registry.MustLookup(200).Name)

	add1 := p.Invokes[1]
	require.NotNil(t, add1)
	require.False(t, add1.IsPrimitive)
	require.Len(t, add1.Body, 2)
	require.Equal(t, OpCheckedAdd, add1.Body[0].Tag)
	require.Equal(t, OpReturnAssign, add1.Body[1].Tag)

	prim := p.Invokes[2]
	require.NotNil(t, prim)
	require.True(t, prim.IsPrimitive)
	require.Equal(t, "number_add", prim.ImplKey)

	require.Equal(t, p.Invokes[p.PrimaryEntry].Name, "addOne")
}

func TestLoadRegistersBuiltinScalarTypes(t *testing.T) {
	blob, err := Decode([]byte(`{"typeDecls":[],"fieldDecls":[],"invokeDecls":[],"constDecls":[],"constPool":"","primaryEntry":0}`))
	require.NoError(t, err)

	p, err := Load(blob)
	require.NoError(t, err)

	require.Equal(t, "Bool", p.Registry.MustLookup(layout.TypeIDBool).Name)
	require.Equal(t, "Int", p.Registry.MustLookup(layout.TypeIDInt).Name)
	require.Equal(t, "String", p.Registry.MustLookup(layout.TypeIDString).Name)
	require.True(t, p.Registry.MustLookup(layout.TypeIDBigNat).IsKeyComparable())
	require.False(t, p.Registry.MustLookup(layout.TypeIDDecimal).IsKeyComparable())
}

func TestLoadUnknownCategoryErrors(t *testing.T) {
	blob, err := Decode([]byte(`{"typeDecls":[{"tid":300,"name":"Bogus","category":"NotARealCategory"}],"fieldDecls":[],"invokeDecls":[],"constDecls":[],"constPool":"","primaryEntry":0}`))
	require.NoError(t, err)

	_, err = Load(blob)
	require.Error(t, err)
}
