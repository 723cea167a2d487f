package bloom

/*

# Bloom filter for tracked path existence

A Filter answers "has this path ever been added?" without walking the trie:

- "definitely not present" is exact: there are no false negatives.
- "maybe present" may be wrong; the caller confirms against the trie.

There is no removal. Clearing a single path would require counting bits.

## Layout

The bitset is a fixed array of ceil(m/8) bytes using LSB0 numbering: bit j
lives in byte j>>3 at position j&7. The size m is fixed at construction and
never changes.

## Hashing

Three polynomial rolling hashes over the item bytes, multipliers 31, 37 and
41, wrapping at 64 bits. Each hash is reduced modulo m to pick one bit.

## False positive estimate

FalsePositiveProbability is the analytic approximation

	(1 - e^(-k*n/m))^k

where n is the insert counter. Re-adding an item increments n, so the
estimate is an upper bound when the same path is staged more than once.

*/
