package stores

// narrowToRelevant trims a multi-category result set down to the cluster
// most relevant to the query. paths[i] is candidate i's category path
// ordered general to specific; candidates arrive in the store's own
// relevance order. Precedence:
//
//  1. candidates sharing the top result's most specific category;
//  2. if that leaves at most one, broaden to the top result's parent
//     category;
//  3. if still at most one, keep the first 3 candidates as returned.
//
// The returned slice holds kept indices in their original order.
func narrowToRelevant(paths [][]string) []int {
	all := make([]int, len(paths))
	for i := range paths {
		all[i] = i
	}
	if len(paths) <= 1 {
		return all
	}

	top := paths[0]
	if len(top) > 0 {
		leaf := top[len(top)-1]
		if cluster := indicesWithCategory(paths, leaf); len(cluster) > 1 {
			return cluster
		}
		if len(top) > 1 {
			parent := top[len(top)-2]
			if cluster := indicesWithCategory(paths, parent); len(cluster) > 1 {
				return cluster
			}
		}
	}

	if len(all) > 3 {
		return all[:3]
	}
	return all
}

func indicesWithCategory(paths [][]string, category string) []int {
	var out []int
	for i, path := range paths {
		for _, c := range path {
			if c == category {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
