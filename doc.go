/*
Package pfxtable contains a sorted, immutable key/value table format
with front-coded keys. It is one component of a larger storage layer:
tables are written once, in key order, committed and then queried.

Data Structure Documentation

Table

A table is a plain series of entries, starting at the root offset. There
is no index and no footer, metadata is exchanged with the enclosing
database via RootInfo.

    Table layout:
    +---------+---------+---------+---------+
    | entry 1 | entry 2 |   ...   | entry n |
    +---------+---------+---------+---------+

Entry

Keys are between 1 and 255 bytes long. The first entry stores its full key,
subsequent entries only store the suffix which differs from the previous key
together with the length of the shared prefix.

    First entry:
    +---------------------+--------------+--------------+----------------+
    | key length (1 byte) | key (varlen) | tag (varint) | value (varlen) |
    +---------------------+--------------+--------------+----------------+

    Subsequent entries:
    +---------------------+---------------------+-----------------+--------------+----------------+
    | shared len (1 byte) | suffix len (1 byte) | suffix (varlen) | tag (varint) | value (varlen) |
    +---------------------+---------------------+-----------------+--------------+----------------+

Tag

The tag packs the stored value length and a compressed flag into a single
unsigned varint of at most 8 bytes:

    tag = value length << 1 | compressed

Compressed values are stored as produced by the table's codec and
decompressed on retrieval.
*/
package pfxtable
