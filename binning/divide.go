package binning

import "log/slog"

// resizeU32 mimics C++ array_t::resize: grow with zero-fill or truncate,
// preserving the common prefix.
func resizeU32(s []uint32, n int) []uint32 {
	if n <= len(s) {
		return s[:n]
	}
	out := make([]uint32, n)
	copy(out, s)

	return out
}

// DivideCounts computes up to nb bin-boundary right-edges (exclusive indices
// into cnt) so that each bin's summed weight is close to total/nb. This is a
// faithful port of ibis::index::divideCounts
// (original_source/src/index.cpp:3631-4189): the greedy forward pass with
// graduated closing thresholds, the post-pass bin-count reconciliation via
// splitting, the adjacent-bin smoothing pass, and the heavy-singleton
// recursion are all preserved, including the original's rounding and
// off-by-one conventions.
//
// The returned slice usually has length nb, but its length can differ: the
// trivial path (nb*3/2 >= len(cnt)) returns one boundary per cnt entry, the
// greedy pass can append one extra bin for leftover weight, and it can also
// return fewer than nb when no bin can be split further. Callers (the
// bin-construction code in the index package) treat bdry[len-1] == len(cnt)
// as the implicit right edge.
func DivideCounts(nb int, cnt []uint32) []uint32 {
	bdry := make([]uint32, nb)
	if nb == 0 {
		return bdry
	}

	ncnt := len(cnt)
	if nb*3/2 >= ncnt {
		bdry = resizeU32(bdry, ncnt)
		for i := 0; i < ncnt; i++ {
			bdry[i] = uint32(i + 1) //nolint:gosec
		}

		return bdry
	}

	weight := make([]uint32, nb)
	var avg, top uint32
	for i := 0; i < ncnt; i++ {
		avg += cnt[i]
		if top < cnt[i] {
			top = cnt[i]
		}
	}
	avg = (avg + uint32(nb>>1)) / uint32(nb) //nolint:gosec

	var result []uint32
	if top < avg {
		result = divideNoHeavy(bdry, weight, cnt, nb, ncnt, avg)
	} else {
		result = divideHeavy(bdry, weight, cnt, nb, ncnt, avg)
	}

	slog.Debug("binning.DivideCounts", "requested_bins", nb, "ncnt", ncnt, "result_bins", len(result))

	return result
}

// divideNoHeavy is the branch of divideCounts taken when no single
// fine-grained bucket exceeds the target average weight.
func divideNoHeavy(bdry, weight []uint32, cnt []uint32, nb, ncnt int, avg uint32) []uint32 {
	top := cnt[0]
	i := 1
	j := 0

	for i < ncnt && j < nb {
		switch {
		case top+cnt[i] < avg:
			top += cnt[i]
		case top+cnt[i] == avg:
			weight[j] = avg
			bdry[j] = uint32(i + 1) //nolint:gosec
			j++
			i++
			if i < ncnt {
				top = cnt[i]
			} else {
				top = 0
			}
		case j > 0 && weight[j-1] > avg:
			switch {
			case float64(top) > 0.9*float64(avg):
				weight[j] = top
				bdry[j] = uint32(i) //nolint:gosec
				j++
				top = cnt[i]
			case float64(top+cnt[i]) < 1.2*float64(avg):
				weight[j] = top + cnt[i]
				bdry[j] = uint32(i + 1) //nolint:gosec
				j++
				i++
				if i < ncnt {
					top = cnt[i]
				} else {
					top = 0
				}
			case float64(top) > 0.7*float64(avg):
				weight[j] = top
				bdry[j] = uint32(i) //nolint:gosec
				j++
				top = cnt[i]
			case float64(top+cnt[i]) < 1.4*float64(avg):
				weight[j] = top + cnt[i]
				bdry[j] = uint32(i + 1) //nolint:gosec
				j++
				i++
				if i < ncnt {
					top = cnt[i]
				} else {
					top = 0
				}
			default:
				weight[j] = top
				bdry[j] = uint32(i) //nolint:gosec
				j++
				top = cnt[i]
			}
		case float64(top+cnt[i]) < 1.1*float64(avg):
			weight[j] = top + cnt[i]
			bdry[j] = uint32(i + 1) //nolint:gosec
			j++
			i++
			if i < ncnt {
				top = cnt[i]
			} else {
				top = 0
			}
		case float64(top) > 0.8*float64(avg):
			weight[j] = top
			bdry[j] = uint32(i) //nolint:gosec
			j++
			top = cnt[i]
		case float64(top+cnt[i]) < 1.3*float64(avg):
			weight[j] = top + cnt[i]
			bdry[j] = uint32(i + 1) //nolint:gosec
			j++
			i++
			if i < ncnt {
				top = cnt[i]
			} else {
				top = 0
			}
		case float64(top) > 0.6*float64(avg):
			weight[j] = top
			bdry[j] = uint32(i) //nolint:gosec
			j++
			top = cnt[i]
		default:
			weight[j] = top + cnt[i]
			bdry[j] = uint32(i + 1) //nolint:gosec
			j++
			i++
			if i < ncnt {
				top = cnt[i]
			} else {
				top = 0
			}
		}
		i++
	}

	if top > 0 {
		if j < nb {
			weight[j] = top
			bdry[j] = uint32(ncnt) //nolint:gosec
			j++
		} else {
			for i < ncnt {
				top += cnt[i]
				i++
			}
			if weight[j-1]+top < avg<<1 {
				weight[j-1] += top
				bdry[j-1] = uint32(ncnt) //nolint:gosec
			} else {
				weight = append(weight, top)
				bdry = append(bdry, uint32(ncnt)) //nolint:gosec
				j = len(bdry)
			}
		}
	}

	if j < nb {
		dosplit := false
		for {
			top = 0
			var heaviest int
			for i := 1; i < j; i++ {
				if weight[i] >= weight[heaviest] {
					heaviest = i
				}
			}
			dosplit = false
			for i := heaviest; i < j; i++ {
				if i > 0 {
					dosplit = bdry[i] > bdry[i-1]+1
				} else {
					dosplit = bdry[0] > 1
				}
				if dosplit {
					bdry[i]--
					weight[i] -= cnt[bdry[i]]
					if i+1 < j {
						weight[i+1] += cnt[bdry[i]]
					} else {
						weight = resizeU32(weight, i+2)
						bdry = resizeU32(bdry, i+2)
						weight[i+1] = cnt[bdry[i]]
						bdry[i+1] = uint32(ncnt) //nolint:gosec
					}
				}
			}
			if dosplit {
				j++
			}
			if !(j < nb && dosplit) {
				break
			}
		}
		if j < nb {
			bdry = resizeU32(bdry, j)
			weight = resizeU32(weight, j)
		}
	}

	smoothBoundaries(bdry, weight, cnt)

	return bdry
}

// smoothBoundaries repeatedly moves boundary elements between the pair of
// adjacent bins with the largest weight imbalance, as long as doing so
// narrows the difference without creating a worse one elsewhere.
func smoothBoundaries(bdry, weight []uint32, cnt []uint32) {
	doadjust := len(bdry) > 2
	for doadjust {
		diff := int64(weight[1]) - int64(weight[0])
		j := 1
		for i := 2; i < len(bdry); i++ {
			tmp := int64(weight[i]) - int64(weight[i-1])
			if absInt64(diff) < absInt64(tmp) {
				diff = tmp
				j = i
			}
		}
		doadjust = false

		switch {
		case diff > 0:
			if weight[j-1]+cnt[bdry[j-1]] < weight[j] {
				diff >>= 1
				doadjust = true
				if int64(cnt[bdry[j-1]]) > diff {
					weight[j-1] += cnt[bdry[j-1]]
					weight[j] -= cnt[bdry[j-1]]
					bdry[j-1]++
				} else {
					i := int(bdry[j-1]) + 1
					top := cnt[bdry[j-1]]
					for int64(top) <= diff {
						top += cnt[i]
						i++
					}
					i--
					top -= cnt[i]
					weight[j-1] += top
					weight[j] -= top
					bdry[j-1] = uint32(i) //nolint:gosec
				}
			} else if j > 1 && int64(weight[j-1])+int64(cnt[bdry[j-1]])-int64(cnt[bdry[j-2]]) < int64(weight[j]) {
				doadjust = true
				i := j - 1
				for ; doadjust && i > 1; i-- {
					if weight[i-1]+cnt[bdry[i-1]] < weight[j] {
						break
					}
					doadjust = int64(weight[i-1])+int64(cnt[bdry[i-1]])-int64(cnt[bdry[i-2]]) < int64(weight[j])
				}
				if i == 1 && doadjust {
					doadjust = weight[0]+cnt[bdry[0]] < weight[j]
				}
				if doadjust {
					for i <= j {
						weight[i-1] += cnt[bdry[i-1]]
						weight[i] -= cnt[bdry[i-1]]
						bdry[i-1]++
						i++
					}
				}
			}
		case diff < 0:
			if weight[j-1] > weight[j]+cnt[bdry[j-1]-1] {
				doadjust = true
				negDiff := -diff / 2
				if int64(cnt[bdry[j-1]-1]) > negDiff {
					bdry[j-1]--
					weight[j] += cnt[bdry[j-1]]
					weight[j-1] -= cnt[bdry[j-1]]
				} else {
					i := int(bdry[j-1]) - 2
					top := cnt[bdry[j-1]-1]
					for int64(top)+int64(cnt[i]) <= negDiff {
						top += cnt[i]
						i--
					}
					i++
					bdry[j-1] = uint32(i) //nolint:gosec
					weight[j] += top
					weight[j-1] -= top
				}
			} else if weight[j-1]-cnt[bdry[j-1]-1] > weight[j]-cnt[bdry[j]-1] {
				doadjust = j+1 < len(weight)
				i := j + 1
				for ; doadjust && i < len(weight); i++ {
					if weight[j-1] > weight[i]+cnt[bdry[i-1]-1] {
						break
					}
					doadjust = (i+1 < len(weight)) &&
						(weight[i-1]-cnt[bdry[i-1]-1] > weight[i]-cnt[bdry[i]-1])
				}
				if doadjust {
					for i >= j {
						bdry[i-1]--
						weight[i] += cnt[bdry[i-1]]
						weight[i-1] -= cnt[bdry[i-1]]
						i--
					}
				}
			}
		}
	}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}

// divideHeavy is the branch of divideCounts taken when at least one
// fine-grained bucket's count meets or exceeds the target average: those
// buckets become standalone bins, and the remaining bin budget is
// apportioned across the gaps between them by recursing into each gap.
func divideHeavy(bdry, weight []uint32, cnt []uint32, nb, ncnt int, avg uint32) []uint32 {
	i, j := 0, 0
	for i < ncnt && j < nb {
		if cnt[i] >= avg {
			weight[j] = uint32(i) //nolint:gosec
			j++
		}
		i++
	}

	if i < ncnt || j >= nb {
		// All values have equal counts (or every bucket is heavy): fall
		// back to nb uniform-width bins over the index space.
		avgInt := ncnt / nb
		rem := ncnt % nb
		top := 0
		out := make([]uint32, nb)
		k := 0
		for ; k < rem; k++ {
			top += avgInt + 1
			out[k] = uint32(top) //nolint:gosec
		}
		for ; k < nb; k++ {
			top += avgInt
			out[k] = uint32(top) //nolint:gosec
		}

		return out
	}

	weight = resizeU32(weight, j)
	cnt2 := make([]uint32, j+1)
	cnt2[0] = 0
	var totalAvg uint32
	for k := 0; k < int(weight[0]); k++ {
		cnt2[0] += cnt[k]
	}
	totalAvg += cnt2[0]
	for k := 1; k < j; k++ {
		cnt2[k] = 0
		for ki := weight[k-1] + 1; ki < weight[k]; ki++ {
			cnt2[k] += cnt[ki]
		}
		totalAvg += cnt2[k]
	}
	cnt2[j] = 0
	for k := int(weight[j-1]) + 1; k < ncnt; k++ {
		cnt2[j] += cnt[k]
	}
	totalAvg += cnt2[j]

	denom := uint32(nb - j) //nolint:gosec
	var avg2 uint32
	if totalAvg > denom {
		avg2 = (totalAvg + (denom >> 1)) / denom
	} else {
		avg2 = 1
	}
	halfAvg2 := avg2 >> 1

	nb2 := make([]uint32, j+1)
	for k := 0; k <= j; k++ {
		nb2[k] = (halfAvg2 + cnt2[k]) / avg2
		switch {
		case nb2[k] == 0 && cnt2[k] > 0:
			nb2[k] = 1
		case k == j:
			if nb2[k] > uint32(ncnt)-weight[j-1]-1 {
				nb2[k] = uint32(ncnt) - weight[j-1] - 1 //nolint:gosec
			}
		case k > 0:
			if nb2[k] > weight[k]-weight[k-1]-1 {
				nb2[k] = weight[k] - weight[k-1] - 1
			}
		case k == 0 && nb2[0] > weight[0]:
			nb2[0] = weight[0]
		}
	}

	reconcileBinBudget(nb2, cnt2, weight, nb, j, ncnt)

	var out []uint32
	if nb2[0] > 1 {
		sub := divideInRange(cnt, 0, int(weight[0]), int(nb2[0]))
		out = sub
	} else if nb2[0] == 1 {
		out = []uint32{weight[0]}
	}

	for k := 0; k < j; k++ {
		off := weight[k] + 1
		out = append(out, off)
		upper := ncnt
		if k+1 < j {
			upper = int(weight[k+1])
		}
		if nb2[k+1] > 1 {
			sub := divideInRange(cnt, int(off), upper, int(nb2[k+1]))
			for _, v := range sub {
				out = append(out, off+v)
			}
		} else if nb2[k+1] == 1 {
			out = append(out, uint32(upper)) //nolint:gosec
		}
	}

	return out
}

// divideInRange recurses divideCounts over the sub-histogram cnt[lo:hi],
// returning boundaries relative to lo.
func divideInRange(cnt []uint32, lo, hi, nb int) []uint32 {
	return DivideCounts(nb, cnt[lo:hi])
}

// reconcileBinBudget nudges the per-gap bin counts nb2 up or down, one at a
// time, until their sum (plus the j heavy singleton bins) exactly equals nb.
func reconcileBinBudget(nb2, cnt2, weight []uint32, nb, j, ncnt int) {
	total := j
	for _, v := range nb2 {
		total += int(v)
	}

	for total > nb {
		top := 0
		frac := maxFrac
		if nb2[0] > 1 {
			frac = float64(cnt2[0]) / float64(nb2[0])
		}
		for i := 1; i <= j; i++ {
			if nb2[i] <= 1 {
				continue
			}
			if frac < maxFrac {
				cand := float64(cnt2[i]) / float64(nb2[i])
				if frac*float64(nb2[i]) < float64(cnt2[i]) {
					top = i
					frac = cand
				} else if frac*float64(nb2[i]) == float64(cnt2[i]) && cnt2[i] > cnt2[top] {
					top = i
					frac = cand
				}
			} else {
				top = i
				frac = float64(cnt2[i]) / float64(nb2[i])
			}
		}
		if frac == maxFrac {
			break
		}
		nb2[top]--
		total--
	}

	for total < nb {
		top := 0
		var frac float64
		if nb2[0] > 0 {
			frac = float64(cnt2[0]) / float64(nb2[0])
		} else {
			frac = float64(cnt2[0])
		}
		if nb2[0] >= weight[0] {
			frac = 0
		}
		for i := 1; i <= j; i++ {
			limit := uint32(ncnt) - weight[j-1] - 1
			if i < j {
				limit = weight[i] - weight[i-1] - 1
			}
			if nb2[i] == 0 || nb2[i] >= limit {
				continue
			}
			cand := float64(cnt2[i]) / float64(nb2[i])
			switch {
			case frac*float64(nb2[i]) > float64(cnt2[i]):
				top = i
				frac = cand
			case frac*float64(nb2[i]) == float64(cnt2[i]) && cnt2[i] > cnt2[top]:
				top = i
				frac = cand
			case frac <= 0.0:
				top = i
				frac = cand
			}
		}
		if frac == 0.0 {
			break
		}
		nb2[top]++
		total++
	}
}

const maxFrac = 1e308
